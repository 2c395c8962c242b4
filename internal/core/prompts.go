package core

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/medaid-ai/medaid/internal/chat"
)

// Disclaimer is the line every advice reply must end with.
const Disclaimer = "**Disclaimer**: I am an AI assistant. This information is for general guidance and is not a substitute for professional medical advice. Please consult a doctor or qualified healthcare provider for a diagnosis and before starting any new treatment."

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompts is the parsed prompt catalog.
type Prompts struct {
	SymptomChecker   string `yaml:"symptom_checker"`
	RemedySuggestion string `yaml:"remedy_suggestion"`
	Transcribe       string `yaml:"transcribe"`

	symptomTmpl *template.Template
	remedyTmpl  *template.Template
}

// LoadPrompts parses the embedded catalog, or the file at path when set.
// Keys missing from an override file fall back to the embedded values.
func LoadPrompts(path string) (*Prompts, error) {
	p := &Prompts{}
	if err := yaml.Unmarshal(defaultPrompts, p); err != nil {
		return nil, fmt.Errorf("failed to parse embedded prompts: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
		}
		var override Prompts
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
		}
		if override.SymptomChecker != "" {
			p.SymptomChecker = override.SymptomChecker
		}
		if override.RemedySuggestion != "" {
			p.RemedySuggestion = override.RemedySuggestion
		}
		if override.Transcribe != "" {
			p.Transcribe = override.Transcribe
		}
	}

	var err error
	if p.symptomTmpl, err = template.New("symptom_checker").Parse(p.SymptomChecker); err != nil {
		return nil, fmt.Errorf("invalid symptom_checker prompt: %w", err)
	}
	if p.remedyTmpl, err = template.New("remedy_suggestion").Parse(p.RemedySuggestion); err != nil {
		return nil, fmt.Errorf("invalid remedy_suggestion prompt: %w", err)
	}
	if strings.TrimSpace(p.Transcribe) == "" {
		return nil, fmt.Errorf("transcribe prompt is empty")
	}
	return p, nil
}

// SymptomInstruction renders the system instruction for an advice request.
func (p *Prompts) SymptomInstruction(lang chat.Language) (string, error) {
	return execute(p.symptomTmpl, map[string]string{
		"Language":     string(lang),
		"LanguageName": lang.Name(),
		"Disclaimer":   Disclaimer,
	})
}

// RemedyPrompt renders the single-shot remedy prompt.
func (p *Prompts) RemedyPrompt(symptoms string) (string, error) {
	return execute(p.remedyTmpl, map[string]string{
		"Symptoms":   symptoms,
		"Disclaimer": Disclaimer,
	})
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
