// Package notify posts sprint events to a chat platform.
package notify

import "context"

// Sidebar colors for posted events.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Event is a platform-neutral rich message.
type Event struct {
	Title  string
	Body   string
	Color  string // hex, e.g. "#36a64f"
	Fields []Field
}

// Field is a name/value pair shown alongside an event.
type Field struct {
	Name  string
	Value string
	Short bool
}

// Notifier delivers events to a channel.
type Notifier interface {
	Send(ctx context.Context, evt Event) error
}
