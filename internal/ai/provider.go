package ai

import (
	"context"
	"errors"
)

type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Options bound a single chat call. MaxTokens caps the response length;
// JSONOutput asks the provider to emit pure JSON when it supports that hint.
type Options struct {
	MaxTokens  int
	JSONOutput bool
}

type Provider interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Model-response failures surfaced to callers. Both unwrap from provider
// errors so callers can treat them as one "malformed model response" family.
var (
	ErrNoChoices    = errors.New("ai: model response has no choices")
	ErrEmptyContent = errors.New("ai: model response content is empty")
)
