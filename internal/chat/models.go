package chat

import (
	"encoding/json"
	"fmt"
)

// Role tags a message as coming from the user or from the assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Language is the reply language of a thread.
type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
	Bengali Language = "bn"
)

// Languages lists the supported reply languages; the first one is the default.
var Languages = []Language{English, Hindi, Bengali}

// DefaultLanguage is used where a route omits the language.
const DefaultLanguage = English

// ParseLanguage accepts one of the supported language codes.
func ParseLanguage(s string) (Language, error) {
	for _, l := range Languages {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// Name returns the English name of the language, as used in prompts.
func (l Language) Name() string {
	switch l {
	case Hindi:
		return "Hindi"
	case Bengali:
		return "Bengali"
	default:
		return "English"
	}
}

// Message is one immutable chat bubble. Build it with UserMessage or
// AssistantMessage.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role Role   `json:"role"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("unknown message role %q", raw.Role)
	}
	*m = Message{Role: raw.Role, Text: raw.Text}
	return nil
}

// Thread is one independent conversation.
type Thread struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
	Language Language  `json:"language"`
}

// Roles of the model service's history entries.
const (
	ContextRoleUser  = "user"
	ContextRoleModel = "model"
)

// ContextEntry is one history item in the shape the model service expects.
type ContextEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ParseContext decodes a serialized history payload. The payload is either a
// JSON array of entries or a JSON string holding such an array.
func ParseContext(data []byte) ([]ContextEntry, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("failed to decode history string: %w", err)
		}
		if inner == "" {
			return nil, nil
		}
		data = []byte(inner)
	}

	var entries []ContextEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	for i, e := range entries {
		if e.Role != ContextRoleUser && e.Role != ContextRoleModel {
			return nil, fmt.Errorf("history entry %d has unknown role %q", i, e.Role)
		}
	}
	return entries, nil
}
