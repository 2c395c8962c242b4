package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/medaid-ai/medaid/internal/chat"
)

const (
	defaultChatModelName = "gemini-1.5-flash-latest"

	transcribeTemperature = float32(0.1)
)

// AdviceModel produces advice text from the model service.
type AdviceModel interface {
	GenerateAdvice(ctx context.Context, symptoms string, lang chat.Language, history []chat.ContextEntry) (string, error)
	SuggestRemedies(ctx context.Context, symptoms string) (string, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, mimeType string, audio []byte) (string, error)
}

// safetySettings mirror the thresholds the hosted assistant was tuned with.
// Dangerous content is not blocked so first-aid instructions are never cut.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockLowAndAbove},
}

// LLMService talks to Gemini for advice, remedies and transcription.
type LLMService struct {
	client    *genai.Client
	modelName string
	prompts   *Prompts
	logger    *slog.Logger
}

func NewLLMService(ctx context.Context, apiKey, modelName string, prompts *Prompts, logger *slog.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if modelName == "" {
		modelName = defaultChatModelName
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LLMService{
		client:    client,
		modelName: modelName,
		prompts:   prompts,
		logger:    logger.With("component", "llm"),
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("Error closing GenAI client", "error", err)
		} else {
			s.logger.Info("GenAI client closed")
		}
	}
}

// GenerateAdvice sends symptoms as the next user turn after history.
func (s *LLMService) GenerateAdvice(ctx context.Context, symptoms string, lang chat.Language, history []chat.ContextEntry) (string, error) {
	instruction, err := s.prompts.SymptomInstruction(lang)
	if err != nil {
		return "", err
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instruction)},
	}
	model.SafetySettings = safetySettings

	chatSession := model.StartChat()
	chatSession.History = toGenaiHistory(history)

	resp, err := chatSession.SendMessage(ctx, genai.Text(symptoms))
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}
	return s.responseText(resp)
}

// SuggestRemedies runs the single-shot herbal remedy prompt.
func (s *LLMService) SuggestRemedies(ctx context.Context, symptoms string) (string, error) {
	prompt, err := s.prompts.RemedyPrompt(symptoms)
	if err != nil {
		return "", err
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SafetySettings = safetySettings

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini remedy request failed: %w", err)
	}
	return s.responseText(resp)
}

// Transcribe sends the audio inline together with the transcription prompt.
func (s *LLMService) Transcribe(ctx context.Context, mimeType string, audio []byte) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(transcribeTemperature)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: audio},
		genai.Text(s.prompts.Transcribe),
	)
	if err != nil {
		return "", fmt.Errorf("gemini transcription request failed: %w", err)
	}

	text, err := s.responseText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func toGenaiHistory(history []chat.ContextEntry) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, entry := range history {
		contents = append(contents, &genai.Content{
			Role:  entry.Role,
			Parts: []genai.Part{genai.Text(entry.Text)},
		})
	}
	return contents
}

func (s *LLMService) responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini response was empty or had no valid candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			s.logger.Debug("Gemini response part was not text", "type", fmt.Sprintf("%T", part))
		}
	}

	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text")
	}
	return responseText.String(), nil
}
