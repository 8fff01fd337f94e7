package config

import (
	"fmt"
	"time"
)

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath string
	envVar     string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvVar specifies the environment variable consulted for the
// configuration path when no file is given explicitly.
// Default is "SYSMOND_CONFIG"
func WithEnvVar(name string) Option {
	return func(o *options) error {
		o.envVar = name
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// Warning is a non-fatal finding of the loader, such as an unknown key.
type Warning struct {
	Key   string
	Value string
}

func (w Warning) String() string {
	return fmt.Sprintf("ignored unknown configuration %s = %s", w.Key, w.Value)
}

// BatteryConfig describes the battery and its voltage sensor. Voltages are in
// the same unit as raw×ratio, millivolts for the usual hwmon inputs.
type BatteryConfig struct {
	MaxVoltage    int
	MinVoltage    int
	CutoffVoltage int
	DivideRatio   float64
	Input         string
}

// Enabled reports whether a battery source is configured.
func (b BatteryConfig) Enabled() bool {
	return b.Input != ""
}

type PowerOffConfig struct {
	CountDown int
	Percent   float64
	Command   []string
}

type TemperatureConfig struct {
	CPUInput string
	GPUInput string
}

// Config is the validated, immutable daemon configuration.
type Config struct {
	Battery           BatteryConfig
	PowerOff          PowerOffConfig
	Temperature       TemperatureConfig
	SamplePeriod      time.Duration
	CPUCores          int
	DiskMountPoint    string
	NetworkInterfaces []string
	DataFileOut       string
	PowerEventDB      string
	PIDFile           string
	LogLevel          LogLevel
	ProcRoot          string
	SysRoot           string
	Path              string
}

// CPULines is the number of /proc/stat cpu lines sampled: the aggregate line
// plus one per configured core.
func (c *Config) CPULines() int {
	return c.CPUCores + 1
}
