package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/medaid-ai/medaid/internal/datauri"
	"github.com/medaid-ai/medaid/internal/metrics"
	"github.com/medaid-ai/medaid/internal/render"
	"github.com/medaid-ai/medaid/internal/wav"
)

const defaultSpeechConcurrency = 4

// SpeechInput is a text-to-speech request.
type SpeechInput struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// SpeechService turns advice text into one merged WAV file.
type SpeechService struct {
	synth       Synthesizer
	concurrency int
	validate    *validator.Validate
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewSpeechService(synth Synthesizer, concurrency int, m *metrics.Metrics, logger *slog.Logger) *SpeechService {
	if concurrency <= 0 {
		concurrency = defaultSpeechConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechService{
		synth:       synth,
		concurrency: concurrency,
		validate:    newValidator(),
		metrics:     m,
		logger:      logger.With("component", "speech"),
	}
}

// TextToSpeech synthesizes the text sentence by sentence and returns a
// data:audio/wav;base64 URI. Markup is stripped first. Sentences whose
// synthesis fails are dropped; it is an error only when all of them fail.
func (s *SpeechService) TextToSpeech(ctx context.Context, in SpeechInput) (string, error) {
	if err := validateInput(s.validate, in); err != nil {
		s.metrics.ValidationFailures.WithLabelValues("speech").Inc()
		return "", err
	}

	sentences := SplitSentences(render.PlainText(render.Parse(in.Text)))
	if len(sentences) == 0 {
		return "", newValidationError("text", "Text has nothing to speak.")
	}

	clips := s.synthesizeAll(ctx, sentences)
	if len(clips) == 0 {
		return "", &ServiceError{Op: "text to speech", Err: fmt.Errorf("all %d sentences failed", len(sentences))}
	}

	merged, err := wav.MergeSequential(clips)
	if err != nil {
		return "", fmt.Errorf("failed to merge speech clips: %w", err)
	}
	s.metrics.MergedAudioBytes.Observe(float64(len(merged)))

	if d, err := wav.Duration(merged); err == nil {
		s.logger.Debug("Speech synthesized", "sentences", len(sentences), "clips", len(clips), "duration", d)
	}
	return datauri.Format("audio/wav", merged), nil
}

// synthesizeAll runs one synthesis call per sentence with bounded
// concurrency and returns the WAV clips of the successful ones in order.
func (s *SpeechService) synthesizeAll(ctx context.Context, sentences []string) [][]byte {
	results := make([][]byte, len(sentences))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, sentence := range sentences {
		g.Go(func() error {
			start := time.Now()
			pcm, err := s.synth.Synthesize(ctx, sentence)
			s.metrics.ObserveModelCall("tts", time.Since(start).Seconds(), err)
			if err != nil {
				s.metrics.SentencesDropped.Inc()
				s.logger.Warn("Dropping sentence after synthesis failure", "index", i, "preview", preview(sentence), "error", err)
				return nil
			}

			clip, err := wav.Encode(pcm, wav.SpeechFormat)
			if err != nil {
				s.metrics.SentencesDropped.Inc()
				s.logger.Warn("Dropping sentence with unusable audio", "index", i, "error", err)
				return nil
			}
			s.metrics.SentencesSynthesized.Inc()
			results[i] = clip
			return nil
		})
	}
	_ = g.Wait()

	clips := make([][]byte, 0, len(results))
	for _, clip := range results {
		if clip != nil {
			clips = append(clips, clip)
		}
	}
	return clips
}

func preview(s string) string {
	const limit = 32
	r := []rune(strings.TrimSpace(s))
	if len(r) <= limit {
		return string(r)
	}
	return string(r[:limit]) + "..."
}
