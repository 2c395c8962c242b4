package core

import (
	"context"
	"fmt"
	"log/slog"

	speechgenai "google.golang.org/genai"
)

const (
	defaultTTSModelName = "gemini-2.5-flash-preview-tts"
	defaultTTSVoice     = "Algenib"
)

// Synthesizer converts one piece of text into raw 16-bit mono PCM at 24 kHz.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// GeminiSynthesizer uses the Gemini speech model with a prebuilt voice.
type GeminiSynthesizer struct {
	client    *speechgenai.Client
	modelName string
	voice     string
	logger    *slog.Logger
}

func NewGeminiSynthesizer(ctx context.Context, apiKey, modelName, voice string, logger *slog.Logger) (*GeminiSynthesizer, error) {
	client, err := speechgenai.NewClient(ctx, &speechgenai.ClientConfig{
		APIKey:  apiKey,
		Backend: speechgenai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	if modelName == "" {
		modelName = defaultTTSModelName
	}
	if voice == "" {
		voice = defaultTTSVoice
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiSynthesizer{
		client:    client,
		modelName: modelName,
		voice:     voice,
		logger:    logger.With("component", "tts"),
	}, nil
}

func (s *GeminiSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	cfg := &speechgenai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &speechgenai.SpeechConfig{
			VoiceConfig: &speechgenai.VoiceConfig{
				PrebuiltVoiceConfig: &speechgenai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.modelName, speechgenai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("speech generation failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("audio generation returned no media")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			s.logger.Debug("Synthesized sentence", "mime", part.InlineData.MIMEType, "bytes", len(part.InlineData.Data))
			return part.InlineData.Data, nil
		}
	}
	return nil, fmt.Errorf("audio generation returned no media")
}
