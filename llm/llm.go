// Package llm holds the backend-neutral pieces of talking to the external
// model: the one-shot prompt shape, the Invoker contract each backend client
// implements, and the opportunistic JSON extraction applied to replies.
package llm

import "context"

// Image is an optional image attachment for vision prompts.
type Image struct {
	Data   []byte
	Format string // jpeg, png, gif, webp
}

// Prompt is a single-shot request: one system instruction, one user message,
// optionally an image. Replies are unstructured text.
type Prompt struct {
	System    string
	User      string
	Image     *Image
	MaxTokens int32 // 0 means the backend default
}

// Invoker sends a prompt to a model backend and returns the raw reply text.
type Invoker interface {
	Invoke(ctx context.Context, prompt Prompt) (string, error)
}
