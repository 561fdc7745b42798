package chain

import "strings"

// Role tags who sent a message.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Greeting is the assistant message every new session starts with.
const Greeting = "Hello! I'm a SQL assistant. Ask me anything about your database."

// Message is one entry of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Human returns a message sent by the user.
func Human(content string) Message { return Message{Role: RoleHuman, Content: content} }

// Assistant returns a message sent by the assistant.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// History is the append-only conversation of one session. The zero
// value is empty and ready to use.
type History struct {
	msgs []Message
}

// NewHistory returns a history seeded with the greeting.
func NewHistory() *History {
	return &History{msgs: []Message{Assistant(Greeting)}}
}

// Append adds m to the end of the conversation.
func (h *History) Append(m Message) {
	h.msgs = append(h.msgs, m)
}

// Messages returns a copy of the conversation in insertion order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int { return len(h.msgs) }

// FormatHistory renders messages one per line as "Human: ..." or "AI: ...".
func FormatHistory(msgs []Message) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch m.Role {
		case RoleHuman:
			sb.WriteString("Human: ")
		default:
			sb.WriteString("AI: ")
		}
		sb.WriteString(m.Content)
	}
	return sb.String()
}
