package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the CLI.
var (
	ColorRed     = lipgloss.Color("#E5484D")
	ColorGreen   = lipgloss.Color("#30A46C")
	ColorAmber   = lipgloss.Color("#FFB224")
	ColorCyan    = lipgloss.Color("#00C2D7")
	ColorBlue    = lipgloss.Color("#3E63DD")
	ColorGray    = lipgloss.Color("#8B8D98")
	ColorDimGray = lipgloss.Color("#5B5D66")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorAmber)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	PlayingDotStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)
)

// Chat bubbles.
var (
	UserBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 1)

	AssistantBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorDimGray).
				Padding(0, 1)

	UserLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	AssistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan)
)

// Advice blocks.
var (
	HeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	StrongStyle = lipgloss.NewStyle().
			Bold(true)

	EmergencyStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(ColorRed).
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	HerbalTipStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorGreen).
			Foreground(ColorGreen).
			PaddingLeft(1)

	DisclaimerStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)
)
