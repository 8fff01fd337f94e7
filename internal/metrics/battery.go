package metrics

import (
	"math"

	"codeberg.org/mutker/sysmond/internal/config"
)

const (
	// Discharge curve constants. The curve crosses 100 just above maxVoltage;
	// the clamp caps anything beyond.
	curveScale    = 101.0
	curveStretch  = 1.33
	curveExponent = 4.5
	curveCube     = 3.0
)

// BatteryState is the battery reading of the current tick.
type BatteryState struct {
	Raw     int64
	Voltage float64
	Percent float64
	// Valid is false when the voltage is below the cutoff, i.e. outside the
	// range the sensor is designed for.
	Valid bool
}

// BatteryPercent maps a voltage to state of charge with a nonlinear discharge
// curve. Below minVoltage the battery is empty; the result is clamped to
// [0, 100].
func BatteryPercent(voltage, minVoltage, maxVoltage float64) float64 {
	if voltage < minVoltage {
		return 0
	}

	x := curveStretch * (voltage - minVoltage) / (maxVoltage - minVoltage)
	percent := curveScale - curveScale/math.Pow(1+math.Pow(x, curveExponent), curveCube)

	return clamp(percent, 0, 100)
}

// DeriveBattery converts a raw reading using the configured divider ratio.
func DeriveBattery(cfg config.BatteryConfig, raw int64) BatteryState {
	voltage := float64(raw) * cfg.DivideRatio

	return BatteryState{
		Raw:     raw,
		Voltage: voltage,
		Percent: BatteryPercent(voltage, float64(cfg.MinVoltage), float64(cfg.MaxVoltage)),
		Valid:   voltage >= float64(cfg.CutoffVoltage),
	}
}

func clamp(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
