package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single without terminator", "Take rest", []string{"Take rest"}},
		{"terminators", "Rest well. Drink water! Feeling better? Good", []string{"Rest well.", "Drink water!", "Feeling better?", "Good"}},
		{"line breaks", "First line\nSecond line\r\n\nThird", []string{"First line", "Second line", "Third"}},
		{"decimal stays", "Take 2.5 ml. Then rest.", []string{"Take 2.5 ml.", "Then rest."}},
		{"terminator runs", "Really?! Yes...", []string{"Really?!", "Yes..."}},
		{"danda", "आराम करें। पानी पिएं।", []string{"आराम करें।", "पानी पिएं।"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.input))
		})
	}
}
