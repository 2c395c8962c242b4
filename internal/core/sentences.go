package core

import (
	"strings"
	"unicode"
)

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '।':
		return true
	}
	return false
}

// SplitSentences cuts text after sentence terminators and at line breaks.
// A terminator only ends a sentence when followed by whitespace or the end of
// the text, so decimals like "2.5" stay intact. Empty pieces are dropped.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	var cur strings.Builder

	emit := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' || r == '\r' {
			emit()
			continue
		}
		cur.WriteRune(r)
		if !isSentenceEnd(r) {
			continue
		}
		// keep runs like "?!" or "..." together
		for i+1 < len(runes) && isSentenceEnd(runes[i+1]) {
			i++
			cur.WriteRune(runes[i])
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			emit()
		}
	}
	emit()
	return sentences
}
