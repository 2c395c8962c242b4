package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/render"
	"github.com/medaid-ai/medaid/internal/speech"
)

func TestBlocks(t *testing.T) {
	blocks := render.Parse("**Care**\n1. Take rest\n2. Drink water\n⚠️ Call 112\n🌿 Ayurvedic Tip: tulsi tea\n**Disclaimer**: see a doctor.")

	out := Blocks(blocks, 60)

	assert.Contains(t, out, "Care")
	assert.Contains(t, out, "1. Take rest")
	assert.Contains(t, out, "2. Drink water")
	assert.Contains(t, out, "Call 112")
	assert.Contains(t, out, "Ayurvedic Tip: tulsi tea")
	assert.Contains(t, out, "Disclaimer: see a doctor.")
	assert.NotContains(t, out, "**")
}

func TestBlocksUnorderedList(t *testing.T) {
	out := Blocks(render.Parse("- rest\n- fluids"), 40)
	assert.Contains(t, out, "• rest")
	assert.Contains(t, out, "• fluids")
}

func TestMessageBubbles(t *testing.T) {
	user := Message(chat.UserMessage("I have a fever"), 60)
	assert.Contains(t, user, "You")
	assert.Contains(t, user, "I have a fever")

	assistant := Message(chat.AssistantMessage("**Rest**\n- Drink water"), 60)
	assert.Contains(t, assistant, "MedAid")
	assert.Contains(t, assistant, "Drink water")
	assert.NotContains(t, assistant, "**Rest**")

	assert.Panics(t, func() { Message(chat.Message{Role: "system", Text: "x"}, 60) })
}

func TestThread(t *testing.T) {
	th := chat.Thread{ID: "1", Title: "fever", Messages: []chat.Message{
		chat.UserMessage("fever"),
		chat.AssistantMessage("Rest."),
	}}
	out := Thread(th, 50)
	assert.Less(t, strings.Index(out, "fever"), strings.Index(out, "Rest."))
}

func TestThreadLine(t *testing.T) {
	th := chat.Thread{
		ID:       "1758371517063",
		Title:    "I have a fever",
		Language: chat.Bengali,
		Messages: []chat.Message{chat.UserMessage("I have a fever"), chat.AssistantMessage("Rest.")},
	}
	line := ThreadLine(th, true)
	assert.True(t, strings.HasPrefix(line, "> "))
	assert.Contains(t, line, "I have a fever")
	assert.Contains(t, line, "Bengali · 2 messages")
	assert.Contains(t, line, "[1758371517063]")

	assert.True(t, strings.HasPrefix(ThreadLine(th, false), "  "))
}

func TestSpeechStatus(t *testing.T) {
	assert.Contains(t, SpeechStatus(speech.MicRecording, speech.PlaybackIdle), "recording")
	assert.Contains(t, SpeechStatus(speech.MicTranscribing, speech.PlaybackIdle), "transcribing")
	assert.Contains(t, SpeechStatus(speech.MicIdle, speech.PlaybackLoading), "preparing audio")
	assert.Contains(t, SpeechStatus(speech.MicIdle, speech.PlaybackPlaying), "playing")
	assert.Empty(t, SpeechStatus(speech.MicIdle, speech.PlaybackIdle))
}


func TestBlocksListItemUsesDisplayWidth(t *testing.T) {
	item := strings.Repeat("a", minWidth-2)
	out := Blocks(render.Parse("- "+item), minWidth)

	assert.Equal(t, "• "+item, strings.TrimRight(out, " "))
}
