// Package client is the CLI's HTTP client for the MedAid server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/render"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		fields := make([]string, 0, len(e.Fields))
		for field := range e.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	return e.Message
}

// IsValidation reports whether err is a 400 with field messages.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "client"),
	}
}

// ChatReply is the server's answer to one turn.
type ChatReply struct {
	Advice   string         `json:"advice"`
	Language chat.Language  `json:"language"`
	Blocks   []render.Block `json:"blocks"`
}

type chatRequest struct {
	Symptoms string              `json:"symptoms"`
	Language chat.Language       `json:"language"`
	History  []chat.ContextEntry `json:"history"`
}

// Chat sends one turn with the thread's prior context.
func (c *Client) Chat(ctx context.Context, symptoms string, lang chat.Language, history []chat.ContextEntry) (*ChatReply, error) {
	var reply ChatReply
	req := chatRequest{Symptoms: symptoms, Language: lang, History: history}
	if err := c.post(ctx, "/api/chat", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// TextToSpeech returns a WAV data URI for the text.
func (c *Client) TextToSpeech(ctx context.Context, text string) (string, error) {
	var resp struct {
		Audio string `json:"audio"`
	}
	if err := c.post(ctx, "/api/speech", map[string]string{"text": text}, &resp); err != nil {
		return "", err
	}
	return resp.Audio, nil
}

// SpeechToText transcribes a recording given as a data URI.
func (c *Client) SpeechToText(ctx context.Context, audioURI string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/api/transcribe", map[string]string{"audio": audioURI}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Remedies asks for herbal remedy suggestions.
func (c *Client) Remedies(ctx context.Context, symptoms string) (string, error) {
	var resp struct {
		Remedies string `json:"remedies"`
	}
	if err := c.post(ctx, "/api/remedies", map[string]string{"symptoms": symptoms}, &resp); err != nil {
		return "", err
	}
	return resp.Remedies, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Server response", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var parsed struct {
		Error   string              `json:"error"`
		Message string              `json:"message"`
		Fields  map[string][]string `json:"fields"`
		Errors  map[string][]string `json:"errors"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Message = parsed.Error
		if apiErr.Message == "" {
			apiErr.Message = parsed.Message
		}
		apiErr.Fields = parsed.Fields
		if apiErr.Fields == nil {
			apiErr.Fields = parsed.Errors
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
