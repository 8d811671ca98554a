package types

import (
	"fmt"
	"hash/fnv"
)

// Role is the speaker of a message in a model conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType classifies a message within the preprocessing pipeline.
// The set is closed; adding a type means updating IsValid and every
// switch that dispatches on it.
type MessageType string

const (
	TypeSystemPrompt   MessageType = "system_prompt"
	TypeContext        MessageType = "context"
	TypeContextSummary MessageType = "context_summary"
	TypePromptCard     MessageType = "prompt_card"
	TypeFile           MessageType = "file"
	TypeFileSummary    MessageType = "file_summary"
	TypeUserInput      MessageType = "user_input"
)

func (t MessageType) IsValid() bool {
	switch t {
	case TypeSystemPrompt, TypeContext, TypeContextSummary, TypePromptCard,
		TypeFile, TypeFileSummary, TypeUserInput:
		return true
	default:
		return false
	}
}

// Meta carries the pipeline-internal state of a message. It is stripped
// before anything is sent to a provider.
type Meta struct {
	Type            MessageType
	NeedsProcessing bool
	Processed       bool
	Priority        int
	MessageID       string
	CanMerge        bool

	// Display-only fields.
	Title     string
	FileIndex int
}

// Message is one turn in the working sequence, augmented with processing
// metadata. Every message in a working sequence has exactly one Type;
// Processed=true means no pipeline stage will touch it again.
type Message struct {
	Role    Role
	Content string
	Meta    Meta
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	c := *m
	return &c
}

// ChatMessage is the stripped wire form handed to a provider adapter.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const idPrefixLen = 50

// DeriveMessageID produces a stable identity for a message from its
// position, role, content prefix and content length. Identity stays
// stable across repeated passes over the same array as long as the
// content is unchanged.
func DeriveMessageID(index int, m *Message) string {
	prefix := m.Content
	if len(prefix) > idPrefixLen {
		prefix = prefix[:idPrefixLen]
	}
	h := fnv.New32a()
	h.Write([]byte(prefix))
	return fmt.Sprintf("m%d-%s-%08x-%d", index, m.Role, h.Sum32(), len(m.Content))
}

// MessageList is the owned, mutable working sequence of a turn.
type MessageList []*Message

// EnsureIDs assigns a derived MessageID to every message that does not
// have one yet. Existing IDs are never overwritten.
func (l MessageList) EnsureIDs() {
	for i, m := range l {
		if m.Meta.MessageID == "" {
			m.Meta.MessageID = DeriveMessageID(i, m)
		}
	}
}

// Unprocessed returns the messages of the given type that still need
// processing, in order.
func (l MessageList) Unprocessed(t MessageType) []*Message {
	var out []*Message
	for _, m := range l {
		if m.Meta.Type == t && m.Meta.NeedsProcessing && !m.Meta.Processed {
			out = append(out, m)
		}
	}
	return out
}

// IndexOf returns the position of msg in the list, or -1.
func (l MessageList) IndexOf(msg *Message) int {
	for i, m := range l {
		if m == msg {
			return i
		}
	}
	return -1
}

// ReplaceSpan replaces the span [start, start+count) with the given
// replacement messages. Messages outside the span keep their order.
func (l *MessageList) ReplaceSpan(start, count int, replacement ...*Message) error {
	s := *l
	if start < 0 || count < 0 || start+count > len(s) {
		return fmt.Errorf("replace span [%d,%d) out of range for %d messages", start, start+count, len(s))
	}
	out := make(MessageList, 0, len(s)-count+len(replacement))
	out = append(out, s[:start]...)
	out = append(out, replacement...)
	out = append(out, s[start+count:]...)
	*l = out
	return nil
}

// Strip drops all metadata and returns the plain role/content sequence
// for the generation call.
func (l MessageList) Strip() []ChatMessage {
	out := make([]ChatMessage, 0, len(l))
	for _, m := range l {
		out = append(out, ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// TotalChars sums the content length of the given messages.
func TotalChars(msgs []*Message) int {
	total := 0
	for _, m := range msgs {
		total += len(m.Content)
	}
	return total
}
