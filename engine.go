package otpgate

import (
	"context"

	internalaudit "github.com/otpgate/otpgate/internal/audit"
	"github.com/otpgate/otpgate/password"
	"github.com/otpgate/otpgate/token"
)

// Engine orchestrates the OTP-gated authentication flows. Safe for
// concurrent use after [Builder.Build]; all collaborator calls are awaited
// within one request except signup notification dispatch.
type Engine struct {
	config     Config
	challenges ChallengeStore
	users      UserStore
	notifier   Notifier
	hasher     *password.Hasher
	tokens     *token.Manager
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
}

// Close flushes the audit pipeline and releases the challenge store
// connection. The user store and notifier are owned by the caller.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	if e.audit != nil {
		e.audit.Close()
	}
	if e.challenges != nil {
		return e.challenges.Close()
	}
	return nil
}

// Ping verifies the challenge store connection.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.challenges == nil {
		return ErrEngineNotReady
	}
	return e.challenges.Ping(ctx)
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.challenges != nil && e.users != nil &&
		e.notifier != nil && e.hasher != nil && e.tokens != nil
}
