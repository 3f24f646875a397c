package bot

import "context"

// Button is an inline keyboard button. Exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Message is an outbound direct message, optionally with inline buttons
// laid out as rows.
type Message struct {
	ChatID  int64
	Text    string
	Buttons [][]Button
}

// Messenger is the outbound half of the platform boundary.
type Messenger interface {
	// Send delivers a message. It fails when the chat is unreachable, for
	// example a user who never started the bot or blocked it.
	Send(ctx context.Context, msg Message) error

	// ApproveJoinRequest approves userID's pending request to join chatID.
	ApproveJoinRequest(ctx context.Context, chatID, userID int64) error

	// AnswerCallback acknowledges a button click so the client stops its
	// loading indicator.
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Publisher receives domain events for the live admin feed.
type Publisher interface {
	Publish(kind string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// Feed event kinds.
const (
	FeedJoinApproved     = "join_approved"
	FeedContentRequested = "content_requested"
	FeedBroadcastDone    = "broadcast_done"
)
