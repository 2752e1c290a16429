package portal

import "log"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier receives the transient toasts the portal emits. Failures are
// always surfaced here, never thrown at the screens.
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notifications to the process log. The default when no
// UI is attached.
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, message string) {
	log.Printf("[%s] %s", level, message)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}
