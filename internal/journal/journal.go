// Package journal keeps an sqlite audit trail of low battery guard events.
package journal

import (
	"context"
	"time"

	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/logger"
	"codeberg.org/mutker/sysmond/internal/power"
)

type noopRecorder struct{}

// New returns the journal for cfg, or a no-op recorder when no database is
// configured.
func New(cfg Config, log logger.Logger) (Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.New().Wrap(errors.ErrInvalidConfig, err)
	}

	if !cfg.Enabled() {
		log.Debug().Msg("Power event journal disabled, using no-op recorder")
		return noopRecorder{}, nil
	}

	return NewRepository(cfg, log)
}

func (noopRecorder) Record(context.Context, Event) error { return nil }

func (noopRecorder) Events(context.Context, string) ([]Event, error) { return nil, nil }

func (noopRecorder) Session() string { return "" }

func (noopRecorder) Close() error { return nil }

// Observer records guard transitions. Failures are logged and dropped.
// Observer is not safe for concurrent use.
type Observer struct {
	rec  Recorder
	log  logger.Logger
	now  func() time.Time
	last Kind
}

func NewObserver(rec Recorder, log logger.Logger) *Observer {
	return &Observer{rec: rec, log: log, now: time.Now}
}

func (o *Observer) Observe(ctx context.Context, t power.Transition) {
	kind, ok := kinds[t.Decision]
	if !ok {
		return
	}
	// A failing sensor reports invalid every tick; keep the first one of a run.
	if kind == KindInvalidVoltage && o.last == KindInvalidVoltage {
		return
	}

	o.write(ctx, Event{
		Timestamp: o.now(),
		Kind:      kind,
		State:     t.To.String(),
		Countdown: t.Countdown,
		Voltage:   t.Battery.Voltage,
		Percent:   t.Battery.Percent,
	})
}

// Lifecycle records a started or stopped event for the guard in state s.
func (o *Observer) Lifecycle(ctx context.Context, kind Kind, s power.State, countdown int) {
	o.write(ctx, Event{
		Timestamp: o.now(),
		Kind:      kind,
		State:     s.String(),
		Countdown: countdown,
	})
}

func (o *Observer) write(ctx context.Context, ev Event) {
	o.last = ev.Kind
	if err := o.rec.Record(ctx, ev); err != nil {
		o.log.Warn().ErrCode(err).Str("event", string(ev.Kind)).Msg("Failed to record power event")
	}
}

var kinds = map[power.Decision]Kind{
	power.DecisionCountdown: KindCountdown,
	power.DecisionReset:     KindReset,
	power.DecisionInvalid:   KindInvalidVoltage,
	power.DecisionShutdown:  KindShutdown,
}

func timeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
