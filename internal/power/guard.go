// Package power implements the low battery guard: a countdown with
// hysteresis that powers the host off after a sustained run of low readings.
package power

import (
	"context"

	"codeberg.org/mutker/sysmond/internal/config"
	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/logger"
	"codeberg.org/mutker/sysmond/internal/metrics"
)

type State int

const (
	Normal State = iota
	Counting
	Shutdown
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Counting:
		return "counting"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Decision is what a single Check did.
type Decision int

const (
	DecisionNormal Decision = iota
	DecisionInvalid
	DecisionCountdown
	DecisionReset
	DecisionShutdown
)

func (d Decision) String() string {
	switch d {
	case DecisionNormal:
		return "normal"
	case DecisionInvalid:
		return "invalid_voltage"
	case DecisionCountdown:
		return "countdown"
	case DecisionReset:
		return "reset"
	case DecisionShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Transition describes a Check that is worth recording.
type Transition struct {
	From      State
	To        State
	Decision  Decision
	Countdown int
	Battery   metrics.BatteryState
}

// Observer is notified of every countdown step, reset, invalid reading and
// the final shutdown.
type Observer interface {
	Observe(ctx context.Context, t Transition)
}

type Option func(*Guard)

func WithObserver(o Observer) Option {
	return func(g *Guard) {
		g.observer = o
	}
}

func WithLogger(l logger.Logger) Option {
	return func(g *Guard) {
		g.log = l
	}
}

// Guard owns the countdown. It is not safe for concurrent use.
type Guard struct {
	length     int
	threshold  float64
	countdown  int
	state      State
	shutdowner Shutdowner
	observer   Observer
	log        logger.Logger
}

func NewGuard(cfg config.PowerOffConfig, s Shutdowner, opts ...Option) *Guard {
	g := &Guard{
		length:     cfg.CountDown,
		threshold:  cfg.Percent,
		countdown:  cfg.CountDown,
		state:      Normal,
		shutdowner: s,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Guard) State() State {
	return g.state
}

// Countdown returns the number of low readings left before power off.
func (g *Guard) Countdown() int {
	return g.countdown
}

// Check feeds one battery reading to the guard. When the countdown runs out
// the shutdowner is invoked and the returned error carries
// ErrShutdownTriggered; once shut down, further checks do nothing.
func (g *Guard) Check(ctx context.Context, b metrics.BatteryState) (Decision, error) {
	if g.state == Shutdown {
		return DecisionShutdown, nil
	}

	from := g.state

	if !b.Valid {
		g.log.Warn().
			Float64("voltage", b.Voltage).
			Str("state", g.state.String()).
			Msg("Battery voltage below cutoff, ignoring reading")
		g.notify(ctx, from, DecisionInvalid, b)
		return DecisionInvalid, nil
	}

	if b.Percent > g.threshold {
		if g.state == Normal {
			return DecisionNormal, nil
		}

		g.countdown = g.length
		g.state = Normal
		g.log.Info().
			Float64("percent", b.Percent).
			Int("countdown", g.countdown).
			Msg("Battery recovered, power off countdown reset")
		g.notify(ctx, from, DecisionReset, b)
		return DecisionReset, nil
	}

	g.countdown--
	if g.countdown > 0 {
		g.state = Counting
		g.log.Warn().
			Float64("percent", b.Percent).
			Float64("threshold", g.threshold).
			Int("countdown", g.countdown).
			Msg("Battery low, power off countdown")
		g.notify(ctx, from, DecisionCountdown, b)
		return DecisionCountdown, nil
	}

	g.countdown = 0
	g.state = Shutdown
	g.log.Error().
		Float64("percent", b.Percent).
		Msg("Battery exhausted, powering off")
	g.notify(ctx, from, DecisionShutdown, b)

	errFactory := errors.New()
	if err := g.shutdowner.Shutdown(ctx); err != nil {
		return DecisionShutdown, errFactory.Wrap(ErrShutdownTriggered, err)
	}

	return DecisionShutdown, errFactory.New(ErrShutdownTriggered)
}

func (g *Guard) notify(ctx context.Context, from State, d Decision, b metrics.BatteryState) {
	if g.observer == nil {
		return
	}

	g.observer.Observe(ctx, Transition{
		From:      from,
		To:        g.state,
		Decision:  d,
		Countdown: g.countdown,
		Battery:   b,
	})
}
