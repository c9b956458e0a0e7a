package stream

// EventType tags a decoded semantic event.
type EventType string

const (
	EventChatID   EventType = "chatId"
	EventThinking EventType = "thinking"
	EventContent  EventType = "content"
	EventParts    EventType = "parts"
	EventDone     EventType = "done"
	EventError    EventType = "error"
	EventPing     EventType = "ping"
)

// Event is one decoded frame. Which fields are set depends on Type:
// Text for thinking/content, Parts for parts, Message for error, and the
// id/url trio for chatId and done. Done carries the latched values seen
// anywhere in the stream, since the source may repeat or omit them per
// frame.
type Event struct {
	Type EventType

	Text      string
	Parts     []any
	Message   string
	ChatID    string
	VersionID string
	DemoURL   string
}
