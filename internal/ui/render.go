// Package ui renders chat messages and advice blocks for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/render"
	"github.com/medaid-ai/medaid/internal/speech"
)

// minWidth keeps bubbles readable on very narrow terminals.
const minWidth = 24

// Inline renders spans, bolding strong ones.
func Inline(in render.Inline) string {
	var b strings.Builder
	for _, span := range in {
		if span.Strong {
			b.WriteString(StrongStyle.Render(span.Text))
		} else {
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

// Blocks renders parsed advice, one styled section per block.
func Blocks(blocks []render.Block, width int) string {
	width = max(width, minWidth)
	wrap := lipgloss.NewStyle().Width(width)

	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		switch blk.Kind {
		case render.KindHeading:
			parts = append(parts, HeadingStyle.Render(blk.Text.String()))
		case render.KindList:
			items := make([]string, 0, len(blk.Items))
			for i, item := range blk.Items {
				marker := "•"
				if blk.Ordered {
					marker = fmt.Sprintf("%d.", i+1)
				}
				items = append(items, lipgloss.JoinHorizontal(lipgloss.Top,
					marker+" ",
					lipgloss.NewStyle().Width(width-lipgloss.Width(marker)-1).Render(Inline(item)),
				))
			}
			parts = append(parts, strings.Join(items, "\n"))
		case render.KindEmergency:
			parts = append(parts, EmergencyStyle.Width(width).Render("⚠ "+Inline(blk.Text)))
		case render.KindHerbalTip:
			parts = append(parts, HerbalTipStyle.Width(width).Render("🌿 Ayurvedic Tip: "+Inline(blk.Text)))
		case render.KindDisclaimer:
			parts = append(parts, DisclaimerStyle.Width(width).Render("Disclaimer: "+blk.Text.String()))
		default:
			parts = append(parts, wrap.Render(Inline(blk.Text)))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Message renders one chat bubble. User text is shown as typed; assistant
// text is parsed into advice blocks.
func Message(msg chat.Message, width int) string {
	width = max(width, minWidth)
	inner := width - 4 // border and padding

	switch msg.Role {
	case chat.RoleUser:
		body := lipgloss.NewStyle().Width(inner).Render(msg.Text)
		bubble := UserBubbleStyle.Render(UserLabelStyle.Render("You") + "\n" + body)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	case chat.RoleAssistant:
		body := Blocks(render.Parse(msg.Text), inner)
		return AssistantBubbleStyle.Render(AssistantLabelStyle.Render("MedAid") + "\n" + body)
	default:
		panic(fmt.Sprintf("ui: unknown message role %q", msg.Role))
	}
}

// Thread renders every message of a thread.
func Thread(t chat.Thread, width int) string {
	parts := make([]string, 0, len(t.Messages))
	for _, m := range t.Messages {
		parts = append(parts, Message(m, width))
	}
	return strings.Join(parts, "\n")
}

// ThreadLine is one row of the thread list.
func ThreadLine(t chat.Thread, current bool) string {
	marker := "  "
	style := lipgloss.NewStyle()
	if current {
		marker = "> "
		style = SelectedStyle
	}
	meta := fmt.Sprintf("%s · %d messages · %s", t.Language.Name(), len(t.Messages), humanize.Time(chat.CreatedAt(t)))
	return marker + style.Render(t.Title) + "  " + DimStyle.Render("["+t.ID+"] "+meta)
}

// SpeechStatus summarizes both speech state machines in one line.
func SpeechStatus(mic speech.MicState, playback speech.PlaybackState) string {
	switch {
	case mic == speech.MicRecording:
		return RecordingDotStyle.Render("●") + " recording, press Enter to stop"
	case mic == speech.MicTranscribing:
		return DimStyle.Render("… transcribing")
	case playback == speech.PlaybackLoading:
		return DimStyle.Render("… preparing audio")
	case playback == speech.PlaybackPlaying:
		return PlayingDotStyle.Render("▶") + " playing, /stop to stop"
	default:
		return ""
	}
}

// Notice renders a non-fatal problem.
func Notice(msg string) string {
	return NoticeStyle.Render("! " + msg)
}

// Error renders a failed action.
func Error(msg string) string {
	return ErrorStyle.Render("✗ " + msg)
}

