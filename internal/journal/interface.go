package journal

import (
	"context"
	"time"
)

// Kind names a power event.
type Kind string

const (
	KindStarted        Kind = "started"
	KindCountdown      Kind = "countdown"
	KindReset          Kind = "reset"
	KindInvalidVoltage Kind = "invalid_voltage"
	KindShutdown       Kind = "shutdown"
	KindStopped        Kind = "stopped"
)

// Event is one row of the power event journal.
type Event struct {
	Timestamp time.Time
	Kind      Kind
	State     string
	Countdown int
	Voltage   float64
	Percent   float64
}

// Recorder stores power events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Events(ctx context.Context, session string) ([]Event, error)
	Session() string
	Close() error
}
