package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/pkg/logger"
)

// AuditLogger returns a handler that writes every signal to the structured log.
// Threshold signals are logged at warn level so they stand out in aggregation.
func AuditLogger(l *zap.Logger) Handler {
	if l == nil {
		l = zap.NewNop()
	}
	return func(ctx context.Context, signal Signal) error {
		log := logger.WithContext(ctx, l).With(
			zap.String("signal", string(signal.Type())),
			zap.String("student_id", signal.Subject()),
			zap.Time("occurred_at", signal.OccurredAt()),
		)
		switch s := signal.(type) {
		case ConsecutiveThresholdReached:
			log.Warn("consecutive threshold reached",
				zap.String("kind", string(s.Kind)),
				zap.String("threshold_kind", string(s.ThresholdKind)),
				zap.Int("count", s.NewCount),
			)
		case ConsecutivityUpdated:
			log.Debug("consecutivity updated",
				zap.String("kind", string(s.Kind)),
				zap.Int("count", s.NewCount),
				zap.String("reference_id", s.ReferenceID),
			)
		}
		return nil
	}
}
