package bot

import "time"

// Event is one inbound platform event. The set is closed: the dispatcher
// switches over exactly these four types.
type Event interface {
	isEvent()
}

// User is the sender of an event.
type User struct {
	ID        int64
	Username  string
	FirstName string
}

// Chat is the channel a join request targets.
type Chat struct {
	ID       int64
	Title    string
	Username string
	Type     string
}

// JoinRequestEvent is a pending request by From to join Chat.
type JoinRequestEvent struct {
	Chat Chat
	From User
	Date time.Time
}

// CommandEvent is a "/name arg arg" message. Command has no leading slash
// and no @botname suffix.
type CommandEvent struct {
	ChatID  int64
	From    User
	Command string
	Args    []string
}

// ButtonClickEvent is a click on an inline button carrying Data.
type ButtonClickEvent struct {
	CallbackID string
	ChatID     int64
	From       User
	Data       string
}

// TextMessageEvent is a plain, non-command text message.
type TextMessageEvent struct {
	ChatID int64
	From   User
	Text   string
}

func (JoinRequestEvent) isEvent() {}
func (CommandEvent) isEvent()     {}
func (ButtonClickEvent) isEvent() {}
func (TextMessageEvent) isEvent() {}

// Update pairs an event with the trace id its source assigned to it.
type Update struct {
	ID    string
	Event Event
}

// Button payloads carried by the /start menu.
const (
	ButtonRequest  = "request"
	ButtonHelp     = "help"
	ButtonChannels = "channels"
)
