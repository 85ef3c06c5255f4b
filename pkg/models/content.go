// Package models contains shared data models used across the PostPilot codebase.
package models

import "context"

// GenerationRequest is the input to a single content-model call.
type GenerationRequest struct {
	Prompt      string
	Temperature float64
}

// ContentProvider is the core interface that all content-model integrations
// must implement. Never call specific providers directly — always inject
// this interface.
type ContentProvider interface {
	// Generate sends a prompt to the model and returns its raw text output.
	// The output is expected, but not guaranteed, to contain one JSON object.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Name returns the provider identifier (e.g., "gemini", "openai").
	Name() string
}

// ContentCandidate is one normalized, always-valid draft post for a topic.
// Text and Hashtags are always strings (possibly empty), and MediaURL is
// always populated, so consumers never special-case absence.
type ContentCandidate struct {
	Topic            string `json:"topic"`
	Variant          int    `json:"variant"`
	Text             string `json:"text"`
	Hashtags         string `json:"hashtags"`
	MediaDescription string `json:"mediaDescription"`
	MediaType        string `json:"mediaType"`
	MediaURL         string `json:"mediaUrl"`
	GenerationError  string `json:"generationError,omitempty"`
}
