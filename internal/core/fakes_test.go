package core

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/metrics"
)

var errUpstream = errors.New("upstream unavailable")

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

type adviceCall struct {
	symptoms string
	lang     chat.Language
	history  []chat.ContextEntry
}

type fakeModel struct {
	reply string
	err   error
	calls []adviceCall
}

func (f *fakeModel) GenerateAdvice(_ context.Context, symptoms string, lang chat.Language, history []chat.ContextEntry) (string, error) {
	f.calls = append(f.calls, adviceCall{symptoms: symptoms, lang: lang, history: history})
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeModel) SuggestRemedies(_ context.Context, symptoms string) (string, error) {
	f.calls = append(f.calls, adviceCall{symptoms: symptoms})
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeSynth returns a distinct PCM payload per sentence and fails the
// sentences listed in fail.
type fakeSynth struct {
	mu    sync.Mutex
	pcm   map[string][]byte
	fail  map[string]bool
	calls []string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.fail[text] {
		return nil, errUpstream
	}
	return f.pcm[text], nil
}

type fakeTranscriber struct {
	text     string
	err      error
	mimeType string
	audio    []byte
}

func (f *fakeTranscriber) Transcribe(_ context.Context, mimeType string, audio []byte) (string, error) {
	f.mimeType = mimeType
	f.audio = audio
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}
