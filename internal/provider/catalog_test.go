package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		key  string
		want ID
	}{
		{"sk-" + strings.Repeat("a", 48), OpenAI},
		{"sk-ant-" + strings.Repeat("b", 95), Anthropic},
		{strings.Repeat("g", 39), Google},
		{strings.Repeat("r", 32), AgentRouter},
		{strings.Repeat("r", 64), AgentRouter},
		{"short", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.key).ID)
		})
	}
}

func TestModels(t *testing.T) {
	models := Models(Anthropic)
	assert.Len(t, models, 3)
	assert.Equal(t, "claude-3-opus-20240229", models[0].ID)

	unknown := Models(Unknown)
	assert.Equal(t, []Model{customModel}, unknown)

	// Callers cannot modify the catalog
	models[0].ID = "changed"
	assert.Equal(t, "claude-3-opus-20240229", Models(Anthropic)[0].ID)
}

func TestFindModel(t *testing.T) {
	m, ok := FindModel(Google, "gemini-pro-vision")
	assert.True(t, ok)
	assert.Equal(t, "Gemini Pro Vision", m.Name)

	_, ok = FindModel(Google, "gpt-4")
	assert.False(t, ok)

	m, ok = FindModel(Unknown, "custom-model")
	assert.True(t, ok)
	assert.Equal(t, "Custom Model", m.Name)
}
