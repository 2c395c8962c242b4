package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaid-ai/medaid/internal/chat"
	"github.com/medaid-ai/medaid/internal/render"
)

func TestEmbeddedPrompts(t *testing.T) {
	p, err := LoadPrompts("")
	require.NoError(t, err)

	instruction, err := p.SymptomInstruction(chat.Bengali)
	require.NoError(t, err)
	assert.Contains(t, instruction, "Bengali")
	assert.Contains(t, instruction, Disclaimer)
	assert.Contains(t, instruction, "🌿 Ayurvedic Tip:")
	assert.Contains(t, instruction, "⚠️")

	remedy, err := p.RemedyPrompt("sore throat")
	require.NoError(t, err)
	assert.Contains(t, remedy, "Symptoms: sore throat")

	assert.Equal(t, "Transcribe the spoken audio.", p.Transcribe)
}

func TestDisclaimerIsRecognizedByRenderer(t *testing.T) {
	blocks := render.Parse(Disclaimer)
	require.Len(t, blocks, 1)
	assert.Equal(t, render.KindDisclaimer, blocks[0].Kind)
}

func TestLoadPromptsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transcribe: \"Write down what is said.\"\n"), 0o644))

	p, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, "Write down what is said.", p.Transcribe)

	instruction, err := p.SymptomInstruction(chat.English)
	require.NoError(t, err)
	assert.Contains(t, instruction, "HealthNova")
}

func TestLoadPromptsErrors(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symptom_checker: \"{{ .Broken \"\n"), 0o644))
	_, err = LoadPrompts(path)
	assert.Error(t, err)
}
