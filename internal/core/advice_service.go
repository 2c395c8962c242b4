package core

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/metrics"
	"github.com/medaid-ai/medaid/internal/render"
)

// Form state messages.
const (
	MessageSuccess     = "Success"
	MessageInvalidForm = "Invalid form data."
)

// FormInput is a single-shot advice request from the web form.
type FormInput struct {
	Symptoms string `json:"symptoms" validate:"required,min=3,max=500"`
	Language string `json:"language" validate:"required,oneof=en hi bn"`
}

// ChatInput is one conversational turn. History is the prior context in the
// model's user/model shape, either as a JSON array or a string holding one.
type ChatInput struct {
	Symptoms string          `json:"symptoms" validate:"required,max=1000"`
	Language string          `json:"language,omitempty" validate:"omitempty,oneof=en hi bn"`
	History  json.RawMessage `json:"history,omitempty"`
}

// RemedyInput asks for herbal remedy suggestions only.
type RemedyInput struct {
	Symptoms string `json:"symptoms" validate:"required,min=3,max=500"`
}

// FormState is the result of one form submission. Every submission yields a
// new value; nothing is shared between requests.
type FormState struct {
	Message string              `json:"message"`
	Data    string              `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Blocks  []render.Block      `json:"blocks,omitempty"`
}

// NewFormState returns the initial, empty state.
func NewFormState() FormState {
	return FormState{}
}

// ChatReply is the assistant's answer to one turn.
type ChatReply struct {
	Advice   string         `json:"advice"`
	Language chat.Language  `json:"language"`
	Blocks   []render.Block `json:"blocks"`
}

// AdviceService validates requests and forwards them to the model.
type AdviceService struct {
	model    AdviceModel
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewAdviceService(model AdviceModel, m *metrics.Metrics, logger *slog.Logger) *AdviceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdviceService{
		model:    model,
		validate: newValidator(),
		metrics:  m,
		logger:   logger.With("component", "advice"),
	}
}

// CheckSymptoms handles a form submission. The returned state is always
// usable for display; the error, when set, is a *ValidationError or a
// *ServiceError and tells the caller which status to report.
func (s *AdviceService) CheckSymptoms(ctx context.Context, in FormInput) (FormState, error) {
	in.Symptoms = strings.TrimSpace(in.Symptoms)
	in.Language = strings.TrimSpace(in.Language)

	state := NewFormState()
	if err := validateInput(s.validate, in); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFailures.WithLabelValues("advice").Inc()
			state.Message = MessageInvalidForm
			state.Errors = verr.Fields
		}
		return state, err
	}

	advice, err := s.generate(ctx, "advice", in.Symptoms, chat.Language(in.Language), nil)
	if err != nil {
		state.Message = GenericErrorMessage
		return state, err
	}

	state.Message = MessageSuccess
	state.Data = advice
	state.Blocks = render.Parse(advice)
	return state, nil
}

// ContinueChat handles one chat turn. A history payload that cannot be
// parsed is logged and replaced by an empty history.
func (s *AdviceService) ContinueChat(ctx context.Context, in ChatInput) (*ChatReply, error) {
	in.Symptoms = strings.TrimSpace(in.Symptoms)
	in.Language = strings.TrimSpace(in.Language)

	if err := validateInput(s.validate, in); err != nil {
		s.metrics.ValidationFailures.WithLabelValues("chat").Inc()
		return nil, err
	}

	lang := chat.DefaultLanguage
	if in.Language != "" {
		lang = chat.Language(in.Language)
	}

	history, err := chat.ParseContext(in.History)
	if err != nil {
		s.metrics.HistoryParseErrors.Inc()
		s.logger.Warn("Ignoring malformed chat history", "error", err, "bytes", len(in.History))
		history = nil
	}

	advice, err := s.generate(ctx, "chat", in.Symptoms, lang, history)
	if err != nil {
		return nil, err
	}
	return &ChatReply{
		Advice:   advice,
		Language: lang,
		Blocks:   render.Parse(advice),
	}, nil
}

// SuggestRemedies returns herbal remedy suggestions for the symptoms.
func (s *AdviceService) SuggestRemedies(ctx context.Context, in RemedyInput) (string, error) {
	in.Symptoms = strings.TrimSpace(in.Symptoms)
	if err := validateInput(s.validate, in); err != nil {
		s.metrics.ValidationFailures.WithLabelValues("remedies").Inc()
		return "", err
	}

	start := time.Now()
	remedies, err := s.model.SuggestRemedies(ctx, in.Symptoms)
	s.metrics.ObserveModelCall("remedies", time.Since(start).Seconds(), err)
	if err != nil {
		s.logger.Error("Remedy suggestion failed", "error", err)
		return "", &ServiceError{Op: "suggest remedies", Err: err}
	}
	return remedies, nil
}

func (s *AdviceService) generate(ctx context.Context, op, symptoms string, lang chat.Language, history []chat.ContextEntry) (string, error) {
	start := time.Now()
	advice, err := s.model.GenerateAdvice(ctx, symptoms, lang, history)
	s.metrics.ObserveModelCall(op, time.Since(start).Seconds(), err)
	if err != nil {
		s.logger.Error("Advice generation failed", "op", op, "language", lang, "history_len", len(history), "error", err)
		return "", &ServiceError{Op: "generate advice", Err: err}
	}
	s.logger.Debug("Advice generated", "op", op, "language", lang, "history_len", len(history), "chars", len(advice))
	return advice, nil
}
