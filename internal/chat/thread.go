// Package chat assembles conversation threads from user/assistant turns,
// flattens them into model history and persists the thread collection.
package chat

import (
	"strconv"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

const (
	titleLength   = 40
	titleEllipsis = "..."
)

// now is swapped in tests.
var now = time.Now

// AppendTurn returns thread with the user/assistant pair appended. A nil thread
// starts a new one titled after userText. The argument is never modified.
func AppendTurn(thread *Thread, lang Language, userText, assistantText string) Thread {
	pair := []Message{UserMessage(userText), AssistantMessage(assistantText)}

	if thread == nil {
		return Thread{
			ID:       strconv.FormatInt(now().UnixMilli(), 10),
			Title:    Title(userText),
			Messages: pair,
			Language: lang,
		}
	}

	next := *thread
	next.Messages = make([]Message, 0, len(thread.Messages)+len(pair))
	next.Messages = append(next.Messages, thread.Messages...)
	next.Messages = append(next.Messages, pair...)
	return next
}

// Title truncates text to its first 40 characters, adding an ellipsis when
// something was cut. Characters are grapheme clusters.
func Title(text string) string {
	text = strings.TrimSpace(text)
	if uniseg.GraphemeClusterCount(text) <= titleLength {
		return text
	}

	var b strings.Builder
	gr := uniseg.NewGraphemes(text)
	for i := 0; i < titleLength && gr.Next(); i++ {
		b.WriteString(gr.Str())
	}
	return b.String() + titleEllipsis
}

// ToModelContext flattens the thread into model history entries.
func ToModelContext(thread *Thread) []ContextEntry {
	if thread == nil {
		return []ContextEntry{}
	}

	entries := make([]ContextEntry, 0, len(thread.Messages))
	for _, m := range thread.Messages {
		switch m.Role {
		case RoleUser:
			entries = append(entries, ContextEntry{Role: ContextRoleUser, Text: m.Text})
		case RoleAssistant:
			entries = append(entries, ContextEntry{Role: ContextRoleModel, Text: m.Text})
		}
	}
	return entries
}

// DeleteThread returns threads without the thread identified by id.
func DeleteThread(threads []Thread, id string) []Thread {
	out := make([]Thread, 0, len(threads))
	for _, t := range threads {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// FindThread returns a pointer to a copy of the thread with id, or nil.
func FindThread(threads []Thread, id string) *Thread {
	for _, t := range threads {
		if t.ID == id {
			found := t
			return &found
		}
	}
	return nil
}

// CreatedAt decodes the creation time carried in the thread id. Ids that are
// not millisecond timestamps yield the zero time.
func CreatedAt(t Thread) time.Time {
	ms, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
