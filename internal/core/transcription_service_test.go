package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaid-ai/medaid/internal/datauri"
	"github.com/medaid-ai/medaid/internal/wav"
)

func TestSpeechToText(t *testing.T) {
	model := &fakeTranscriber{text: "I have a headache"}
	svc := NewTranscriptionService(model, 1024, newTestMetrics(), nil)

	text, err := svc.SpeechToText(context.Background(), TranscribeInput{Audio: datauri.Format("audio/webm;codecs=opus", []byte{1, 2, 3})})
	require.NoError(t, err)
	assert.Equal(t, "I have a headache", text)
	assert.Equal(t, "audio/webm", model.mimeType)
	assert.Equal(t, []byte{1, 2, 3}, model.audio)
}

func TestSpeechToTextRejectsBadAudio(t *testing.T) {
	model := &fakeTranscriber{text: "unused"}
	svc := NewTranscriptionService(model, 4, newTestMetrics(), nil)

	for name, audio := range map[string]string{
		"missing": "",
		"not uri": "hello",
		"empty":   "data:audio/wav;base64,",
		"too big": datauri.Format("audio/wav", []byte{1, 2, 3, 4, 5}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SpeechToText(context.Background(), TranscribeInput{Audio: audio})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "audio")
		})
	}
	assert.Nil(t, model.audio)
}

func TestSpeechToTextServiceError(t *testing.T) {
	svc := NewTranscriptionService(&fakeTranscriber{err: errUpstream}, 0, newTestMetrics(), nil)

	_, err := svc.SpeechToText(context.Background(), TranscribeInput{Audio: datauri.Format("audio/wav", []byte{1})})
	assert.ErrorIs(t, err, ErrService)
	assert.ErrorIs(t, err, errUpstream)
}

func TestSpeechToTextSniffsUndeclaredType(t *testing.T) {
	clip, err := wav.Encode(make([]byte, 64), wav.SpeechFormat)
	require.NoError(t, err)

	for _, declared := range []string{"", "application/octet-stream"} {
		model := &fakeTranscriber{text: "ok"}
		svc := NewTranscriptionService(model, 1024, newTestMetrics(), nil)

		_, err := svc.SpeechToText(context.Background(), TranscribeInput{Audio: datauri.Format(declared, clip)})
		require.NoError(t, err)
		assert.Equal(t, "audio/wav", model.mimeType, declared)
	}
}
