// Package gateway generates bot content through a remote LLM provider.
// The engine treats every provider error the same way: the bot's action is
// skipped and retried on the next cycle.
package gateway

import (
	"context"

	"github.com/agenthands/hive/internal/bot"
)

// Request describes what to generate: the acting bot's profile plus, for
// comments, the post being replied to.
type Request struct {
	BotName     string
	Personality bot.Personality
	District    bot.District
	Interests   []string
	Action      bot.Action

	// Comment context.
	TargetText   string
	TargetAuthor string
}

// Result carries the generated text and accounting metadata.
type Result struct {
	Text       string
	Model      string
	TokensUsed int
}

// Client is implemented by each provider adapter.
type Client interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
