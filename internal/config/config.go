package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"codeberg.org/mutker/sysmond/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "/etc/sysmond.conf"
	DefaultEnvVar     = "SYSMOND_CONFIG"
	DefaultLogLevel   = LogLevelInfo

	// MaxNetworkInterfaces bounds network_interfaces.
	MaxNetworkInterfaces = 8
	// MaxInterfaceNameLen is IFNAMSIZ without the terminator.
	MaxInterfaceNameLen = 31

	legacyCutoffKey = "battery_cutoff_votalge"
)

// fileConfig mirrors the keys accepted in the configuration file.
type fileConfig struct {
	BatteryMaxVoltage    int      `mapstructure:"battery_max_voltage" validate:"gt=0"`
	BatteryMinVoltage    int      `mapstructure:"battery_min_voltage" validate:"gte=0"`
	BatteryCutoffVoltage int      `mapstructure:"battery_cutoff_voltage" validate:"gte=0"`
	BatteryDivideRatio   float64  `mapstructure:"battery_divide_ratio" validate:"gt=0"`
	BatteryInput         string   `mapstructure:"battery_input"`
	SamplePeriod         int      `mapstructure:"sample_period" validate:"gt=0"`
	CPUCoreNumber        int      `mapstructure:"cpu_core_number" validate:"gte=1"`
	PowerOffCountDown    int      `mapstructure:"power_off_count_down" validate:"gte=1"`
	PowerOffPercent      float64  `mapstructure:"power_off_percent" validate:"gte=0,lte=100"`
	PowerOffCommand      string   `mapstructure:"power_off_command" validate:"required"`
	DataFileOut          string   `mapstructure:"data_file_out"`
	CPUTemperatureInput  string   `mapstructure:"cpu_temperature_input"`
	GPUTemperatureInput  string   `mapstructure:"gpu_temperature_input"`
	DiskMountPoint       string   `mapstructure:"disk_mount_point" validate:"required"`
	NetworkInterfaces    []string `mapstructure:"network_interfaces" validate:"max=8,dive,min=1,max=31"`
	PowerEventDB         string   `mapstructure:"power_event_db"`
	PIDFile              string   `mapstructure:"pid_file"`
	LogLevel             string   `mapstructure:"log_level"`
	ProcRoot             string   `mapstructure:"proc_root"`
	SysRoot              string   `mapstructure:"sys_root"`
}

func defaults() map[string]any {
	return map[string]any{
		"battery_max_voltage":    4200,
		"battery_min_voltage":    3300,
		"battery_cutoff_voltage": 3000,
		"battery_divide_ratio":   1.0,
		"battery_input":          "",
		"sample_period":          300,
		"cpu_core_number":        1,
		"power_off_count_down":   5,
		"power_off_percent":      1.0,
		"power_off_command":      "poweroff",
		"data_file_out":          "",
		"cpu_temperature_input":  "",
		"gpu_temperature_input":  "",
		"disk_mount_point":       "/",
		"network_interfaces":     []string{},
		"power_event_db":         "",
		"pid_file":               filepath.Join(os.TempDir(), "sysmond.pid"),
		"log_level":              string(DefaultLogLevel),
		"proc_root":              "",
		"sys_root":               "",
	}
}

// Load reads the configuration file and returns a validated Config. Unknown
// keys do not fail the load; they come back as warnings.
func Load(opts ...Option) (*Config, []Warning, error) {
	errFactory := errors.New()

	o := &options{envVar: DefaultEnvVar}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
	}

	path := resolvePath(o)

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("ini")
	if err := file.ReadInConfig(); err != nil {
		return nil, nil, errFactory.WithData(ErrReadConfig, struct {
			Path  string
			Error string
		}{
			Path:  path,
			Error: err.Error(),
		})
	}

	known := defaults()
	flat := viper.New()
	for k, v := range known {
		flat.SetDefault(k, v)
	}
	flat.RegisterAlias(legacyCutoffKey, "battery_cutoff_voltage")

	var warnings []Warning
	for _, key := range file.AllKeys() {
		// Sections carry no meaning; only the key name counts.
		name := key[strings.LastIndex(key, ".")+1:]
		value := strings.TrimSpace(cast.ToString(file.Get(key)))

		if _, ok := known[name]; !ok && name != legacyCutoffKey {
			warnings = append(warnings, Warning{Key: name, Value: value})
			continue
		}
		flat.Set(name, value)
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Key < warnings[j].Key })

	var fc fileConfig
	if err := flat.Unmarshal(&fc); err != nil {
		return nil, warnings, errFactory.Wrap(ErrInvalidValue, err)
	}

	cfg, err := fc.build()
	if err != nil {
		return nil, warnings, err
	}
	cfg.Path = path

	return cfg, warnings, nil
}

func resolvePath(o *options) string {
	if o.configPath != "" {
		return o.configPath
	}
	if o.envVar != "" {
		if p := os.Getenv(o.envVar); p != "" {
			return p
		}
	}
	return DefaultConfigPath
}

func (fc *fileConfig) build() (*Config, error) {
	ifaces := make([]string, 0, len(fc.NetworkInterfaces))
	for _, name := range fc.NetworkInterfaces {
		if name = strings.TrimSpace(name); name != "" {
			ifaces = append(ifaces, name)
		}
	}
	fc.NetworkInterfaces = ifaces
	fc.LogLevel = strings.ToLower(strings.TrimSpace(fc.LogLevel))

	if err := fc.Validate(); err != nil {
		return nil, err
	}

	return &Config{
		Battery: BatteryConfig{
			MaxVoltage:    fc.BatteryMaxVoltage,
			MinVoltage:    fc.BatteryMinVoltage,
			CutoffVoltage: fc.BatteryCutoffVoltage,
			DivideRatio:   fc.BatteryDivideRatio,
			Input:         fc.BatteryInput,
		},
		PowerOff: PowerOffConfig{
			CountDown: fc.PowerOffCountDown,
			Percent:   fc.PowerOffPercent,
			Command:   strings.Fields(fc.PowerOffCommand),
		},
		Temperature: TemperatureConfig{
			CPUInput: fc.CPUTemperatureInput,
			GPUInput: fc.GPUTemperatureInput,
		},
		SamplePeriod:      time.Duration(fc.SamplePeriod) * time.Millisecond,
		CPUCores:          fc.CPUCoreNumber,
		DiskMountPoint:    fc.DiskMountPoint,
		NetworkInterfaces: ifaces,
		DataFileOut:       fc.DataFileOut,
		PowerEventDB:      fc.PowerEventDB,
		PIDFile:           fc.PIDFile,
		LogLevel:          LogLevel(fc.LogLevel),
		ProcRoot:          fc.ProcRoot,
		SysRoot:           fc.SysRoot,
	}, nil
}

// Validate checks field bounds and the battery voltage ordering
// max > min >= cutoff.
func (fc *fileConfig) Validate() error {
	errFactory := errors.New()

	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})

	if err := validate.Struct(fc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return errFactory.Wrap(ErrInvalidValue, err)
		}
		return fieldError(verrs[0])
	}

	if strings.TrimSpace(fc.PowerOffCommand) == "" {
		return errFactory.New(ErrInvalidCommand)
	}

	if !LogLevel(fc.LogLevel).IsValid() {
		return errFactory.WithData(ErrInvalidLogLevel, fc.LogLevel)
	}

	if fc.BatteryMaxVoltage <= fc.BatteryMinVoltage || fc.BatteryMinVoltage < fc.BatteryCutoffVoltage {
		return errFactory.WithData(ErrInvalidBattery, fmt.Sprintf("max: %d, min: %d, cut off: %d",
			fc.BatteryMaxVoltage, fc.BatteryMinVoltage, fc.BatteryCutoffVoltage))
	}

	return nil
}

func fieldError(fe validator.FieldError) error {
	errFactory := errors.New()
	field := fe.Field()

	switch {
	case field == "network_interfaces" && fe.Tag() == "max":
		return errFactory.WithData(ErrTooManyInterfaces, fmt.Sprintf("%d configured, at most %d allowed",
			lenOf(fe.Value()), MaxNetworkInterfaces))
	case strings.HasPrefix(field, "network_interfaces["):
		return errFactory.WithData(ErrInterfaceNameLength, fmt.Sprintf("%v: at most %d bytes",
			fe.Value(), MaxInterfaceNameLen))
	case field == "power_off_command":
		return errFactory.New(ErrInvalidCommand)
	}

	return errFactory.WithData(ErrInvalidValue, fmt.Sprintf("%s=%v must satisfy %s %s",
		field, fe.Value(), fe.Tag(), fe.Param()))
}

func lenOf(v any) int {
	if s, ok := v.([]string); ok {
		return len(s)
	}
	return 0
}
