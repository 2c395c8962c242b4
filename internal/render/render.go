// Package render turns the assistant's free-text advice into typed blocks.
//
// The model is prompted to follow a few line conventions: emergency lines start
// with the warning glyph, herbal tips with "🌿 Ayurvedic Tip:", headings are
// bold-wrapped lines and the reply ends with a "Disclaimer:" line. Anything
// that does not match a convention is a paragraph, so parsing never fails.
package render

import (
	"regexp"
	"strings"
)

// Kind is the structural role of a block.
type Kind string

const (
	KindParagraph  Kind = "paragraph"
	KindList       Kind = "list"
	KindHeading    Kind = "heading"
	KindEmergency  Kind = "emergency"
	KindHerbalTip  Kind = "herbal_tip"
	KindDisclaimer Kind = "disclaimer"
)

// Span is a run of inline text, optionally emphasized.
type Span struct {
	Text   string `json:"text"`
	Strong bool   `json:"strong,omitempty"`
}

// Inline is a line of text split into spans.
type Inline []Span

// String returns the text without emphasis.
func (in Inline) String() string {
	var b strings.Builder
	for _, s := range in {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block is one rendered element. List blocks use Items and Ordered; all other
// kinds use Text.
type Block struct {
	Kind    Kind     `json:"kind"`
	Text    Inline   `json:"text,omitempty"`
	Items   []Inline `json:"items,omitempty"`
	Ordered bool     `json:"ordered,omitempty"`
}

const (
	emergencyGlyph    = "\u26a0"
	variationSelector = "\ufe0f"
	herbalTipMarker   = "🌿 Ayurvedic Tip:"
	boldMarker        = "**"
)

var (
	disclaimerPrefix = regexp.MustCompile(`(?i)^(?:\d+\.\s*)?(?:\*\*)?Disclaimer(?:\*\*)?:(?:\*\*)?\s*`)
	numberedItem     = regexp.MustCompile(`^\d+\.\s+`)
	bulletItem       = regexp.MustCompile(`^[-*]\s+`)
)

type parser struct {
	blocks      []Block
	items       []Inline
	itemOrdered bool
}

// Parse converts advice text into blocks, one line at a time.
func Parse(text string) []Block {
	p := &parser{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.line(line)
	}
	p.flush()
	return p.blocks
}

func (p *parser) line(line string) {
	switch {
	case disclaimerPrefix.MatchString(line):
		p.emit(KindDisclaimer, ParseInline(disclaimerPrefix.ReplaceAllString(line, "")))

	case strings.HasPrefix(line, emergencyGlyph):
		rest := strings.TrimPrefix(line, emergencyGlyph)
		rest = strings.TrimPrefix(rest, variationSelector)
		p.emit(KindEmergency, ParseInline(strings.TrimSpace(rest)))

	case strings.HasPrefix(line, herbalTipMarker):
		p.emit(KindHerbalTip, ParseInline(strings.TrimSpace(strings.TrimPrefix(line, herbalTipMarker))))

	case isHeading(line):
		inner := strings.TrimSpace(line[len(boldMarker) : len(line)-len(boldMarker)])
		p.emit(KindHeading, Inline{{Text: inner}})

	case numberedItem.MatchString(line):
		p.item(numberedItem.ReplaceAllString(line, ""), true)

	case bulletItem.MatchString(line):
		p.item(bulletItem.ReplaceAllString(line, ""), false)

	default:
		p.emit(KindParagraph, ParseInline(line))
	}
}

func isHeading(line string) bool {
	if len(line) <= 2*len(boldMarker) {
		return false
	}
	if !strings.HasPrefix(line, boldMarker) || !strings.HasSuffix(line, boldMarker) {
		return false
	}
	inner := line[len(boldMarker) : len(line)-len(boldMarker)]
	return !strings.Contains(inner, boldMarker) && strings.TrimSpace(inner) != ""
}

func (p *parser) item(text string, ordered bool) {
	if len(p.items) == 0 {
		p.itemOrdered = ordered
	}
	p.items = append(p.items, ParseInline(text))
}

func (p *parser) emit(kind Kind, text Inline) {
	p.flush()
	p.blocks = append(p.blocks, Block{Kind: kind, Text: text})
}

func (p *parser) flush() {
	if len(p.items) == 0 {
		return
	}
	p.blocks = append(p.blocks, Block{Kind: KindList, Items: p.items, Ordered: p.itemOrdered})
	p.items = nil
	p.itemOrdered = false
}

// ParseInline splits text on balanced **bold** markers. A trailing unmatched
// marker is kept as literal text.
func ParseInline(text string) Inline {
	var out Inline
	rest := text
	for {
		open := strings.Index(rest, boldMarker)
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open+len(boldMarker):], boldMarker)
		if closing < 0 {
			break
		}
		closing += open + len(boldMarker)

		if open > 0 {
			out = append(out, Span{Text: rest[:open]})
		}
		if strong := rest[open+len(boldMarker) : closing]; strong != "" {
			out = append(out, Span{Text: strong, Strong: true})
		}
		rest = rest[closing+len(boldMarker):]
	}
	if rest != "" {
		out = append(out, Span{Text: rest})
	}
	return out
}

// PlainText flattens blocks into markup-free lines, suitable for speech.
func PlainText(blocks []Block) string {
	var lines []string
	for _, b := range blocks {
		switch b.Kind {
		case KindList:
			for _, item := range b.Items {
				lines = append(lines, item.String())
			}
		case KindDisclaimer:
			lines = append(lines, "Disclaimer: "+b.Text.String())
		default:
			lines = append(lines, b.Text.String())
		}
	}
	return strings.Join(lines, "\n")
}
