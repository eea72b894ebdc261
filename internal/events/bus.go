package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNilHandler is returned when subscribing a nil handler.
var ErrNilHandler = errors.New("handler cannot be nil")

// Handler consumes a signal. A returned error is logged by the bus and does
// not affect the publisher.
type Handler func(ctx context.Context, signal Signal) error

// HandlerObserver receives timing for every handler invocation.
type HandlerObserver interface {
	ObserveSignalHandler(signal string, duration time.Duration, ok bool)
}

// Bus is a synchronous in-process signal registry. Publish returns only after
// every matching handler has run, in subscription order.
type Bus struct {
	mu          sync.RWMutex
	handlers    map[SignalType][]Handler
	allHandlers []Handler
	observer    HandlerObserver
	logger      *zap.Logger
}

// NewBus constructs an empty bus. observer may be nil.
func NewBus(observer HandlerObserver, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[SignalType][]Handler),
		observer: observer,
		logger:   logger,
	}
}

// Subscribe registers a handler for one signal type.
func (b *Bus) Subscribe(signalType SignalType, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[signalType] = append(b.handlers[signalType], handler)
	b.logger.Debug("subscribed signal handler", zap.String("signal", string(signalType)))
	return nil
}

// SubscribeAll registers a handler for every signal type.
func (b *Bus) SubscribeAll(handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish delivers the signal to type-specific handlers first, then to global ones.
func (b *Bus) Publish(ctx context.Context, signal Signal) {
	if signal == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[signal.Type()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[signal.Type()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		start := time.Now()
		err := handler(ctx, signal)
		if b.observer != nil {
			b.observer.ObserveSignalHandler(string(signal.Type()), time.Since(start), err == nil)
		}
		if err != nil {
			b.logger.Error("signal handler failed",
				zap.String("signal", string(signal.Type())),
				zap.String("student_id", signal.Subject()),
				zap.Error(err),
			)
		}
	}
}
