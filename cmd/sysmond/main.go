package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/sysmond/internal/config"
	"codeberg.org/mutker/sysmond/internal/daemon"
	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/gpu"
	"codeberg.org/mutker/sysmond/internal/journal"
	"codeberg.org/mutker/sysmond/internal/logger"
	"codeberg.org/mutker/sysmond/internal/metrics"
	"codeberg.org/mutker/sysmond/internal/pid"
	"codeberg.org/mutker/sysmond/internal/power"
	"codeberg.org/mutker/sysmond/internal/reader"
	"codeberg.org/mutker/sysmond/internal/source"
	"codeberg.org/mutker/sysmond/internal/telemetry"
	"github.com/spf13/pflag"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type flags struct {
	configPath string
	help       bool
	debug      bool
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (flags, *pflag.FlagSet, error) {
	var f flags

	fs := pflag.NewFlagSet("sysmond", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.configPath, "config", "f", "", "configuration file (default $"+config.DefaultEnvVar+" or "+config.DefaultConfigPath+")")
	fs.BoolVarP(&f.help, "help", "h", false, "show this help and exit")
	fs.BoolVar(&f.debug, "debug", false, "log at debug level")
	fs.BoolVar(&f.verbose, "verbose", false, "log at info level or lower")
	fs.Usage = func() {
		printUsage(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		return f, fs, err
	}
	if fs.NArg() > 0 {
		return f, fs, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	return f, fs, nil
}

func printUsage(fs *pflag.FlagSet, w io.Writer) {
	fs.SetOutput(w)
	fmt.Fprintf(w, "Usage: sysmond [-f <config>] [--debug] [--verbose]\n\n")
	fs.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	f, fs, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stderr, "sysmond: %v\n", err)
		}
		printUsage(fs, stderr)
		return exitUsage
	}
	if f.help {
		printUsage(fs, stdout)
		return exitOK
	}

	var opts []config.Option
	if f.configPath != "" {
		opts = append(opts, config.WithConfigFile(f.configPath))
	}

	cfg, warnings, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "sysmond: failed to load config: %v\n", err)
		return exitError
	}

	logger.Init(logLevel(cfg.LogLevel, f), logger.IsService())
	for _, w := range warnings {
		logger.Warn().Str("key", w.Key).Str("value", w.Value).Msg("Ignoring unknown configuration key")
	}
	logConfig(cfg)

	pidFile := pid.New(cfg.PIDFile)
	if err := pidFile.Write(); err != nil {
		logger.Error().ErrCode(err).Msg("Failed to write PID file")
		return exitError
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logger.Error().ErrCode(err).Msg("Failed to remove PID file")
		}
	}()

	return serve(cfg)
}

func serve(cfg *config.Config) int {
	log := logger.Default()

	temps := gpu.NewSource(source.FileSource{}, log)
	defer func() {
		if err := temps.Close(); err != nil {
			log.Error().ErrCode(err).Msg("Failed to shut down NVML")
		}
	}()

	rec, err := journal.New(journal.Config{DBPath: cfg.PowerEventDB}, log)
	if err != nil {
		log.Error().ErrCode(err).Msg("Failed to open power event journal")
		return exitError
	}
	defer func() {
		if err := rec.Close(); err != nil {
			log.Error().ErrCode(err).Msg("Failed to close power event journal")
		}
	}()
	observer := journal.NewObserver(rec, log)

	guard := power.NewGuard(cfg.PowerOff,
		power.NewCommandShutdowner(cfg.PowerOff.Command),
		power.WithObserver(observer),
		power.WithLogger(log),
	)

	sink := telemetry.NewSink(telemetry.DefaultConfig(cfg.DataFileOut), log)
	defer func() {
		if err := sink.Close(); err != nil {
			log.Error().ErrCode(err).Msg("Failed to close output")
		}
	}()

	d, err := daemon.New(cfg,
		&reader.Reader{Text: temps, Stater: source.UnixStater{}},
		metrics.NewEngine(cfg),
		guard,
		sink,
		daemon.WithLogger(log),
	)
	if err != nil {
		log.Error().ErrCode(err).Msg("Failed to initialize sampler")
		return exitError
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	observer.Lifecycle(ctx, journal.KindStarted, guard.State(), guard.Countdown())

	err = d.Run(ctx)
	switch {
	case err == nil:
		observer.Lifecycle(context.Background(), journal.KindStopped, guard.State(), guard.Countdown())
		log.Info().Msg("Exiting...")
		return exitOK
	case errors.CodeOf(err) == power.ErrShutdownTriggered && errors.Unwrap(err) == nil:
		log.Info().Msg("Power off command issued, exiting")
		return exitOK
	default:
		log.Error().ErrCode(err).Msg("Error in main loop")
		return exitError
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// logLevel applies the command line overrides to the configured level.
func logLevel(configured config.LogLevel, f flags) logger.LogLevel {
	level, _ := logger.ParseLevel(configured.String())

	switch {
	case f.debug:
		return logger.DebugLevel
	case f.verbose && level > logger.InfoLevel:
		return logger.InfoLevel
	default:
		return level
	}
}

func logConfig(cfg *config.Config) {
	logger.Info().
		Str("config", cfg.Path).
		Dur("sample_period", cfg.SamplePeriod).
		Int("cpu_core_number", cfg.CPUCores).
		Str("battery_input", cfg.Battery.Input).
		Int("battery_max_voltage", cfg.Battery.MaxVoltage).
		Int("battery_min_voltage", cfg.Battery.MinVoltage).
		Int("battery_cutoff_voltage", cfg.Battery.CutoffVoltage).
		Float64("battery_divide_ratio", cfg.Battery.DivideRatio).
		Int("power_off_count_down", cfg.PowerOff.CountDown).
		Float64("power_off_percent", cfg.PowerOff.Percent).
		Strs("power_off_command", cfg.PowerOff.Command).
		Str("cpu_temperature_input", cfg.Temperature.CPUInput).
		Str("gpu_temperature_input", cfg.Temperature.GPUInput).
		Str("disk_mount_point", cfg.DiskMountPoint).
		Strs("network_interfaces", cfg.NetworkInterfaces).
		Str("data_file_out", cfg.DataFileOut).
		Str("power_event_db", cfg.PowerEventDB).
		Msg("Configuration loaded")
}
