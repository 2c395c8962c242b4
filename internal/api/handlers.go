package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/medaid-ai/medaid/internal/core"
)

type APIHandler struct {
	advice        *core.AdviceService
	speech        *core.SpeechService
	transcription *core.TranscriptionService
	logger        *slog.Logger
}

func NewAPIHandler(advice *core.AdviceService, speech *core.SpeechService, transcription *core.TranscriptionService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		advice:        advice,
		speech:        speech,
		transcription: transcription,
		logger:        logger.With("component", "api"),
	}
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type SpeechResponse struct {
	Audio string `json:"audio"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type RemediesResponse struct {
	Remedies string `json:"remedies"`
}

// AdviceHandler answers a form submission with the resulting form state.
func (h *APIHandler) AdviceHandler(w http.ResponseWriter, r *http.Request) {
	var req core.FormInput
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.advice.CheckSymptoms(r.Context(), req)
	writeJSON(w, statusFor(err), state)
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req core.ChatInput
	if !h.decode(w, r, &req) {
		return
	}

	reply, err := h.advice.ContinueChat(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *APIHandler) SpeechHandler(w http.ResponseWriter, r *http.Request) {
	var req core.SpeechInput
	if !h.decode(w, r, &req) {
		return
	}

	audio, err := h.speech.TextToSpeech(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SpeechResponse{Audio: audio})
}

func (h *APIHandler) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req core.TranscribeInput
	if !h.decode(w, r, &req) {
		return
	}

	text, err := h.transcription.SpeechToText(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TranscribeResponse{Text: text})
}

func (h *APIHandler) RemediesHandler(w http.ResponseWriter, r *http.Request) {
	var req core.RemedyInput
	if !h.decode(w, r, &req) {
		return
	}

	remedies, err := h.advice.SuggestRemedies(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RemediesResponse{Remedies: remedies})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps service errors to responses. Upstream failure details are
// logged and never sent to the client.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: core.MessageInvalidForm, Fields: verr.Fields})
	case errors.Is(err, core.ErrService):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: core.GenericErrorMessage})
	default:
		h.logger.Error("Unhandled request error", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: core.GenericErrorMessage})
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case core.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
