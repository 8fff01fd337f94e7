package logger

// Logger is the sink components log through. The package-level functions
// write to the process logger; New and Nop build standalone instances.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
}
