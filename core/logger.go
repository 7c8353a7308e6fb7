package core

// Actor identifies the authenticated person performing an operation.
// Identity is established by an external provider; only the attribution
// facts below ever reach this service.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// Logger is any leveled logger service.
type Logger interface {
	Enable(enabled bool)

	// args may contain any extra context to be logged along with msg:
	// an error, a map[string]interface{} or an Actor to attribute the entry to.
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
