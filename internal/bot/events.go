package bot

import "context"

// EventKind tells what the user did.
type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventCallback
)

// Event is one inbound update from the chat transport, already stripped of
// transport details.
type Event struct {
	Kind   EventKind
	ChatID int64

	// MessageID is the message a callback button belongs to.
	MessageID int

	// Text holds the message text for EventText.
	Text string
	// Command is the command name without the leading slash.
	Command string

	CallbackID   string
	CallbackData string
}

// Button is a single selectable button; Data is sent back as callback data.
type Button struct {
	Text string
	Data string
}

// Keyboard is a grid of buttons attached to a message.
type Keyboard [][]Button

// Reply is an outbound message with an optional button grid.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Responder delivers replies to the chat transport.
type Responder interface {
	Send(ctx context.Context, chatID int64, reply Reply) error
	// EditKeyboard replaces the buttons of an already sent message; a nil
	// keyboard removes them.
	EditKeyboard(ctx context.Context, chatID int64, messageID int, kb Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
