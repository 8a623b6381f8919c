package llm

import "context"

// Provider streams model output events for a request.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Stream yields events until io.EOF.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// Request represents a single model turn.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// Role identifies a message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation sent over the wire.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// EventType describes streaming events.
type EventType string

const (
	EventTextDelta EventType = "text_delta"
	EventUsage     EventType = "usage"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// Event represents a streamed output update.
type Event struct {
	Type EventType
	Text string
	Use  *Usage
	Err  error
}

// Usage captures token usage if available.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

func SystemText(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func UserText(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}
