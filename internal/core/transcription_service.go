package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/medaid-ai/medaid/internal/datauri"
	"github.com/medaid-ai/medaid/internal/metrics"
)

const defaultMaxAudioBytes = 10 << 20

// TranscribeInput carries a recording as a base64 data URI.
type TranscribeInput struct {
	Audio string `json:"audio" validate:"required"`
}

// TranscriptionService forwards recordings to the transcriber.
type TranscriptionService struct {
	model    Transcriber
	maxBytes int
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewTranscriptionService(model Transcriber, maxBytes int, m *metrics.Metrics, logger *slog.Logger) *TranscriptionService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxAudioBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscriptionService{
		model:    model,
		maxBytes: maxBytes,
		validate: newValidator(),
		metrics:  m,
		logger:   logger.With("component", "transcription"),
	}
}

// SpeechToText decodes the recording and returns its transcript.
func (s *TranscriptionService) SpeechToText(ctx context.Context, in TranscribeInput) (string, error) {
	if err := validateInput(s.validate, in); err != nil {
		s.metrics.ValidationFailures.WithLabelValues("transcribe").Inc()
		return "", err
	}

	mediaType, audio, err := datauri.Parse(in.Audio)
	if err != nil {
		s.metrics.ValidationFailures.WithLabelValues("transcribe").Inc()
		return "", newValidationError("audio", "Audio must be a base64 data URI.")
	}
	if len(audio) == 0 {
		s.metrics.ValidationFailures.WithLabelValues("transcribe").Inc()
		return "", newValidationError("audio", "The recording is empty.")
	}
	if len(audio) > s.maxBytes {
		s.metrics.ValidationFailures.WithLabelValues("transcribe").Inc()
		return "", newValidationError("audio", fmt.Sprintf("The recording must be at most %d bytes.", s.maxBytes))
	}

	mimeType := audioType(mediaType, audio)
	start := time.Now()
	text, err := s.model.Transcribe(ctx, mimeType, audio)
	s.metrics.ObserveModelCall("transcribe", time.Since(start).Seconds(), err)
	if err != nil {
		s.logger.Error("Transcription failed", "mime", mimeType, "bytes", len(audio), "error", err)
		return "", &ServiceError{Op: "speech to text", Err: err}
	}
	if text == "" {
		s.logger.Info("Transcription returned no text", "mime", mimeType, "bytes", len(audio))
	}
	return text, nil
}

// audioType prefers the declared media type and sniffs the payload when the
// client sent none or a generic one.
func audioType(declared string, audio []byte) string {
	base := datauri.BaseMediaType(declared)
	if declared != "" && base != "application/octet-stream" {
		return base
	}
	return datauri.BaseMediaType(mimetype.Detect(audio).String())
}
