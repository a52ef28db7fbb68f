// Package mock provides a scripted llm.Invoker for tests and local runs
// without a real model backend.
package mock

import (
	"context"
	"log/slog"

	"fridgevision/llm"
)

// Invoker replays canned replies in order and records every prompt it saw.
// Real models may not be so kind :)
type Invoker struct {
	Replies []string
	Err     error
	Prompts []llm.Prompt
}

func NewInvoker(replies ...string) *Invoker {
	return &Invoker{Replies: replies}
}

func (m *Invoker) Invoke(ctx context.Context, prompt llm.Prompt) (string, error) {
	slog.Info("LLM_CLIENT: Mock invoked", "system_len", len(prompt.System), "user_len", len(prompt.User))

	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) == 0 {
		return "", nil
	}

	reply := m.Replies[0]
	if len(m.Replies) > 1 {
		m.Replies = m.Replies[1:]
	}
	return reply, nil
}

// LastPrompt returns the most recent prompt, or a zero prompt when none were
// sent.
func (m *Invoker) LastPrompt() llm.Prompt {
	if len(m.Prompts) == 0 {
		return llm.Prompt{}
	}
	return m.Prompts[len(m.Prompts)-1]
}
