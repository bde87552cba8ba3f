package core

// Logger is any service that can log messages with optional structured context.
// Implementations may inspect args for known types (errors, logged-in user).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
