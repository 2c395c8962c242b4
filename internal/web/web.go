// Package web serves the single-page symptom checker form.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/core"
	"github.com/medaid-ai/medaid/internal/render"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Example is a one-click symptom shortcut.
type Example struct {
	Name    string
	Symptom string
}

var examples = []Example{
	{Name: "Nose Bleed", Symptom: "I have a small nose bleed"},
	{Name: "Fever", Symptom: "I have a fever and a slight headache"},
	{Name: "Cough", Symptom: "I have a dry cough that won't go away"},
	{Name: "Unconscious", Symptom: "Someone is unconscious and not responding"},
}

type languageOption struct {
	Code     chat.Language
	Name     string
	Selected bool
}

type pageData struct {
	State     core.FormState
	Symptoms  string
	Language  chat.Language
	Languages []languageOption
	Examples  []Example
	Advice    template.HTML
	Error     string
}

type Handler struct {
	advice *core.AdviceService
	logger *slog.Logger
}

func NewHandler(advice *core.AdviceService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{advice: advice, logger: logger.With("component", "web")}
}

// Index renders the empty form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(core.NewFormState(), "", chat.DefaultLanguage))
}

// Submit validates the form, asks for advice and renders the result.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := core.FormInput{
		Symptoms: r.PostFormValue("symptoms"),
		Language: r.PostFormValue("language"),
	}
	state, err := h.advice.CheckSymptoms(r.Context(), input)

	lang, perr := chat.ParseLanguage(input.Language)
	if perr != nil {
		lang = chat.DefaultLanguage
	}
	data := newPageData(state, input.Symptoms, lang)

	status := http.StatusOK
	switch {
	case err == nil:
		advice, rerr := render.HTML(state.Blocks)
		if rerr != nil {
			h.logger.Error("Failed to render advice", "error", rerr)
			data.Error = core.GenericErrorMessage
			status = http.StatusInternalServerError
			break
		}
		data.Advice = advice
	case core.IsValidation(err):
		status = http.StatusBadRequest
	default:
		data.Error = core.GenericErrorMessage
		status = http.StatusBadGateway
	}
	h.render(w, status, data)
}

func newPageData(state core.FormState, symptoms string, lang chat.Language) pageData {
	opts := make([]languageOption, 0, len(chat.Languages))
	for _, l := range chat.Languages {
		opts = append(opts, languageOption{Code: l, Name: l.Name(), Selected: l == lang})
	}
	return pageData{
		State:     state,
		Symptoms:  symptoms,
		Language:  lang,
		Languages: opts,
		Examples:  examples,
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("Failed to render page", "error", err)
	}
}
