package gpu

// Prefix marks a temperature identifier served by NVML, e.g. "nvml:0".
const Prefix = "nvml:"

// nvmlController abstracts NVML operations for testing
type nvmlController interface {
	Initialize() error
	Shutdown() error
	DeviceTemperature(index int) (uint32, error)
}
