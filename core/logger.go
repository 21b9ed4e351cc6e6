package core

// Logger is any service that can log messages.
// expected args: error, map[string]interface{} (extra context)
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// View identifies the open view a log line is about.
// Loggers attach it to the reported item as custom data.
type View struct {
	Kind string
	ID   string
}
