// Package daemon runs the sampling loop: one tick per sample period, each
// tick reading every source, updating the metrics and writing one record.
package daemon

import (
	"context"
	"time"

	"codeberg.org/mutker/sysmond/internal/config"
	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/logger"
	"codeberg.org/mutker/sysmond/internal/metrics"
	"codeberg.org/mutker/sysmond/internal/power"
	"codeberg.org/mutker/sysmond/internal/reader"
	"codeberg.org/mutker/sysmond/internal/telemetry"
)

type Option func(*Daemon)

func WithLogger(l logger.Logger) Option {
	return func(d *Daemon) {
		d.log = l
	}
}

// WithClock replaces time.Now for timestamps and overrun detection.
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) {
		d.now = now
	}
}

// Daemon owns every piece of per-tick state. It is driven by a single
// goroutine.
type Daemon struct {
	cfg    *config.Config
	reader *reader.Reader
	engine *metrics.Engine
	guard  *power.Guard
	sink   telemetry.Sink
	log    logger.Logger
	now    func() time.Time

	lastWake time.Time
}

func New(
	cfg *config.Config,
	r *reader.Reader,
	engine *metrics.Engine,
	guard *power.Guard,
	sink telemetry.Sink,
	opts ...Option,
) (*Daemon, error) {
	errFactory := errors.New()

	if cfg == nil || r == nil || engine == nil || guard == nil || sink == nil {
		return nil, errFactory.New(ErrMissingPart)
	}
	if cfg.SamplePeriod <= 0 {
		return nil, errFactory.WithData(ErrInvalidPeriod, cfg.SamplePeriod)
	}

	d := &Daemon{
		cfg:    cfg,
		reader: r,
		engine: engine,
		guard:  guard,
		sink:   sink,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Run ticks every sample period until ctx is cancelled or the battery guard
// powers the host off. Cancellation is only observed between ticks; a tick
// that has started always completes. After a power off Run returns an error
// carrying power.ErrShutdownTriggered.
func (d *Daemon) Run(ctx context.Context) error {
	period := d.cfg.SamplePeriod

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	d.lastWake = d.now()

	d.log.Info().
		Dur("period", period).
		Int("cpu_lines", d.cfg.CPULines()).
		Strs("interfaces", d.cfg.NetworkInterfaces).
		Msg("Sampling started")

	for {
		if ctx.Err() != nil {
			d.log.Info().Msg("Sampling stopped")
			return nil
		}

		select {
		case <-ctx.Done():
			continue
		case <-ticker.C:
		}

		now := d.now()
		d.checkOverrun(now.Sub(d.lastWake), period)
		d.lastWake = now

		if err := d.Tick(context.WithoutCancel(ctx), now); err != nil {
			return err
		}
	}
}

// checkOverrun warns when more than one period passed since the previous
// wake. Missed ticks are not replayed.
func (d *Daemon) checkOverrun(elapsed, period time.Duration) {
	if elapsed < 2*period {
		return
	}

	d.log.Warn().
		Int64("expirations", int64(elapsed/period)).
		Dur("elapsed", elapsed).
		Msg("Sampling overrun, ticks were missed")
}

// Tick runs one sample: battery and guard first, then every reader, the
// metric update and finally the record. Source failures are logged and the
// previous values kept. The only error returned is the guard's power off,
// and only after the record of this tick has been written.
func (d *Daemon) Tick(ctx context.Context, now time.Time) error {
	terminal := d.checkBattery(ctx)

	d.engine.Apply(d.read())

	if err := d.sink.Write(ctx, d.engine.Snapshot(now)); err != nil {
		d.log.Error().ErrCode(err).Msg("Unable to write record")
	}

	return terminal
}

func (d *Daemon) checkBattery(ctx context.Context) error {
	if !d.cfg.Battery.Enabled() {
		return nil
	}

	raw, err := d.reader.ReadBattery(d.cfg.Battery.Input)
	if err != nil {
		d.log.Warn().ErrCode(err).Str("source", d.cfg.Battery.Input).Msg("Unable to read battery")
		return nil
	}

	b := d.engine.UpdateBattery(raw)

	decision, err := d.guard.Check(ctx, b)
	if err != nil {
		if errors.CodeOf(err) == power.ErrShutdownTriggered {
			return err
		}
		d.log.Error().ErrCode(err).Msg("Battery guard failed")
		return nil
	}

	d.log.Debug().
		Float64("voltage", b.Voltage).
		Float64("percent", b.Percent).
		Str("decision", decision.String()).
		Msg("Battery checked")

	return nil
}

func (d *Daemon) read() metrics.Readings {
	var r metrics.Readings

	if cpu, err := d.reader.ReadCPU(reader.StatPath(d.cfg.ProcRoot), d.cfg.CPULines()); err != nil {
		d.warn(err, "cpu")
	} else {
		r.CPU = cpu
	}

	if mem, err := d.reader.ReadMemory(reader.MeminfoPath(d.cfg.ProcRoot)); err != nil {
		d.warn(err, "memory")
	} else {
		r.Memory = &mem
	}

	r.CPUTemp = d.readTemperature(d.cfg.Temperature.CPUInput, "cpu_temperature")
	r.GPUTemp = d.readTemperature(d.cfg.Temperature.GPUInput, "gpu_temperature")

	r.Net = make([]*reader.NetReading, len(d.cfg.NetworkInterfaces))
	for i, iface := range d.cfg.NetworkInterfaces {
		n, err := d.reader.ReadNetwork(d.cfg.SysRoot, iface)
		if err != nil {
			d.warn(err, "network:"+iface)
			continue
		}
		r.Net[i] = &n
	}

	if disk, err := d.reader.ReadDisk(d.cfg.DiskMountPoint); err != nil {
		d.warn(err, "disk")
	} else {
		r.Disk = &disk
	}

	return r
}

// readTemperature returns nil for an unconfigured or failing sensor.
func (d *Daemon) readTemperature(id, name string) *int64 {
	if id == "" {
		return nil
	}

	v, err := d.reader.ReadTemperature(id)
	if err != nil {
		d.warn(err, name)
		return nil
	}

	return &v
}

func (d *Daemon) warn(err error, name string) {
	d.log.Warn().ErrCode(err).Str("reader", name).Msg("Reader failed, keeping previous value")
}
