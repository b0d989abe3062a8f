package course

// Level grades a user-facing notice.
type Level int

// Notice levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows short messages to the learner.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(level Level, msg string)

// Notify calls f.
func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

// HitKind says what kind of element a click landed on.
type HitKind int

// Hit kinds.
const (
	HitBackground HitKind = iota
	HitCard
	HitNode
	HitControl
)

// Hit is the resolved target of a pointer interaction.
type Hit struct {
	Kind     HitKind
	ModuleID string
}
