package types

// RunMode is the process role the binary was started in.
type RunMode string

const (
	// ModeLocal runs the API server, worker, and scheduler in one process.
	ModeLocal RunMode = "local"
	// ModeAPI runs only the HTTP surface.
	ModeAPI RunMode = "api"
	// ModeWorker runs only the job worker and scheduler.
	ModeWorker RunMode = "worker"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) String() string {
	return string(l)
}
