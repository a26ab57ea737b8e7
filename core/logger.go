package core

// Logger is implemented by services/logger.
// args may carry errors, map[string]interface{} of extra fields and at most one Actor.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies the admissions officer on whose behalf an operation runs.
type Actor struct {
	ID    string
	Name  string
	Email string
}
