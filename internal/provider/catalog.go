package provider

import "regexp"

// ID identifies a chat-completion provider
type ID string

const (
	OpenAI      ID = "openai"
	Anthropic   ID = "anthropic"
	Google      ID = "google"
	AgentRouter ID = "agentrouter"
	Unknown     ID = "unknown"
)

// Info describes a detected provider
type Info struct {
	ID   ID
	Name string
}

// Model is one entry of a provider's catalog
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type keyPattern struct {
	info    Info
	pattern *regexp.Regexp
}

// detectors are tried in order. Anthropic keys also match the OpenAI shape,
// so the longer prefix goes first.
var detectors = []keyPattern{
	{Info{Anthropic, "Anthropic"}, regexp.MustCompile(`^sk-ant-[a-zA-Z0-9-_]{95}$`)},
	{Info{OpenAI, "OpenAI"}, regexp.MustCompile(`^sk-[a-zA-Z0-9-_]{20,}$`)},
	{Info{Google, "Google"}, regexp.MustCompile(`^[a-zA-Z0-9-_]{39}$`)},
	{Info{AgentRouter, "AgentRouter"}, regexp.MustCompile(`^[a-zA-Z0-9-_]{32,}$`)},
}

var catalog = map[ID][]Model{
	OpenAI: {
		{"gpt-4", "GPT-4", "Most capable model for complex reasoning tasks"},
		{"gpt-4-turbo-preview", "GPT-4 Turbo", "Latest GPT-4 with improved performance"},
		{"gpt-3.5-turbo", "GPT-3.5 Turbo", "Fast and efficient for most tasks"},
	},
	Anthropic: {
		{"claude-3-opus-20240229", "Claude 3 Opus", "Most intelligent Claude model"},
		{"claude-3-sonnet-20240229", "Claude 3 Sonnet", "Balanced performance and speed"},
		{"claude-3-haiku-20240307", "Claude 3 Haiku", "Fast and lightweight responses"},
	},
	Google: {
		{"gemini-pro", "Gemini Pro", "Advanced reasoning and multimodal capabilities"},
		{"gemini-pro-vision", "Gemini Pro Vision", "Text and image understanding"},
	},
	AgentRouter: {
		{"gpt-4", "GPT-4 via AgentRouter", "OpenAI GPT-4 through AgentRouter"},
		{"claude-3-opus", "Claude 3 Opus via AgentRouter", "Anthropic Claude through AgentRouter"},
		{"gemini-pro", "Gemini Pro via AgentRouter", "Google Gemini through AgentRouter"},
	},
}

var customModel = Model{"custom-model", "Custom Model", "Custom AI model endpoint"}

// Detect guesses the provider from the shape of an API key
func Detect(key string) Info {
	for _, d := range detectors {
		if d.pattern.MatchString(key) {
			return d.info
		}
	}
	return Info{Unknown, "Unknown Provider"}
}

// Models returns the catalog for a provider. Unknown providers get a single
// custom model.
func Models(id ID) []Model {
	models, ok := catalog[id]
	if !ok {
		return []Model{customModel}
	}
	out := make([]Model, len(models))
	copy(out, models)
	return out
}

// FindModel looks a model up in a provider's catalog
func FindModel(id ID, modelID string) (Model, bool) {
	for _, m := range Models(id) {
		if m.ID == modelID {
			return m, true
		}
	}
	return Model{}, false
}
