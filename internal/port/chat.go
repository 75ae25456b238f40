package port

import (
	"context"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
)

// Guild is a community scope on the chat platform.
type Guild interface {
	ID() string
	Name() string

	// Channels lists the guild's text channels in the platform's order.
	Channels() []Channel
}

// Channel is a single text channel the engine may read history from.
type Channel interface {
	ID() string
	Name() string

	// CanReadHistory reports whether the engine is permitted to fetch
	// this channel's history.
	CanReadHistory() bool

	// History fetches up to limit messages, newest first.
	History(ctx context.Context, limit int) ([]domain.Message, error)
}
