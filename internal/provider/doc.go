// Package provider knows which chat-completion services an API key belongs
// to, which models each one offers, and how to talk to an OpenAI-compatible
// endpoint.
package provider
