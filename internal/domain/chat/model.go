// Package chat holds transport-neutral conversation types.
package chat

type EventKind string

const (
	EventCommand EventKind = "command"
	EventOption  EventKind = "option"
)

// Event is one inbound interaction: a slash command or a tapped option.
type Event struct {
	Kind       EventKind
	ChatID     int64
	UserID     int64
	FirstName  string
	MessageID  int64
	CallbackID string
	Command    string
	Args       string
	Data       string
}

// Option is a tappable button; Data comes back in Event.Data.
type Option struct {
	Label string
	Data  string
}

type Message struct {
	Text    string
	Options [][]Option
}

func Row(options ...Option) []Option {
	return options
}
