package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
)

type publisherStub struct {
	mu       sync.Mutex
	failures int
	messages []string
	channels []string
}

func (p *publisherStub) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, string(message.([]byte)))
	return redis.NewIntResult(1, nil)
}

func (p *publisherStub) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.messages...)
}

type relayCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *relayCounter) RecordSignalRelay(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = make(map[string]int)
	}
	c.outcomes[outcome]++
}

func (c *relayCounter) get(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}

func TestRelayPublishesEnvelope(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &publisherStub{}
	relay := NewRelay(pub, RelayConfig{Channel: "school:signals", Logger: zap.NewNop()})
	relay.Start(context.Background())

	ts := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	err := relay.Handle(context.Background(), ConsecutiveThresholdReached{
		StudentID:     "student-1",
		Kind:          models.TrackingKindAbsence,
		NewCount:      3,
		Threshold:     3,
		ThresholdKind: models.ThresholdArchival,
		Timestamp:     ts,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(pub.published()) == 1 }, time.Second, 5*time.Millisecond)
	relay.Stop()

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(pub.published()[0]), &env))
	assert.Equal(t, SignalThresholdReached, env.Type)
	assert.Equal(t, "student-1", env.StudentID)
	assert.True(t, ts.Equal(env.OccurredAt))

	var payload ConsecutiveThresholdReached
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, models.ThresholdArchival, payload.ThresholdKind)
	assert.Equal(t, 3, payload.Threshold)
	assert.Equal(t, []string{"school:signals"}, pub.channels)
}

func TestRelayRetriesThenPublishes(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &publisherStub{failures: 2}
	counter := &relayCounter{}
	relay := NewRelay(pub, RelayConfig{MaxRetries: 3, RetryDelay: time.Millisecond, Observer: counter})
	relay.Start(context.Background())

	require.NoError(t, relay.Handle(context.Background(), ConsecutivityUpdated{StudentID: "student-1", NewCount: 1}))
	require.Eventually(t, func() bool { return counter.get("published") == 1 }, time.Second, 5*time.Millisecond)
	relay.Stop()

	assert.Equal(t, 2, counter.get("retried"))
	assert.Len(t, pub.published(), 1)
}

func TestRelayDropsAfterMaxRetries(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &publisherStub{failures: 10}
	counter := &relayCounter{}
	relay := NewRelay(pub, RelayConfig{MaxRetries: 1, RetryDelay: time.Millisecond, Observer: counter})
	relay.Start(context.Background())

	require.NoError(t, relay.Handle(context.Background(), ConsecutivityUpdated{StudentID: "student-1"}))
	require.Eventually(t, func() bool { return counter.get("dropped") == 1 }, time.Second, 5*time.Millisecond)
	relay.Stop()

	assert.Equal(t, 1, counter.get("retried"))
	assert.Empty(t, pub.published())
}

func TestRelayHandleBeforeStart(t *testing.T) {
	relay := NewRelay(&publisherStub{}, RelayConfig{})
	err := relay.Handle(context.Background(), ConsecutivityUpdated{StudentID: "student-1"})
	assert.ErrorIs(t, err, ErrRelayStopped)
}

func TestRelayAsBusSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &publisherStub{}
	relay := NewRelay(pub, RelayConfig{Workers: 2})
	relay.Start(context.Background())
	defer relay.Stop()

	bus := NewBus(nil, nil)
	require.NoError(t, bus.SubscribeAll(relay.Handle))
	bus.Publish(context.Background(), ConsecutivityUpdated{StudentID: "a"})
	bus.Publish(context.Background(), ConsecutivityUpdated{StudentID: "b"})

	require.Eventually(t, func() bool { return len(pub.published()) == 2 }, time.Second, 5*time.Millisecond)
}
