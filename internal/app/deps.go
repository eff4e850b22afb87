package app

import (
	"context"

	"docuchat/internal/model"
)

// Embedder turns text into fixed-dimension vectors. Implemented by the
// OpenAI-compatible client in production and by deterministic fakes in
// tests.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator turns a rendered prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CleanupQueue accepts blob keys whose objects should be removed.
// Deletion through the queue is best-effort by contract.
type CleanupQueue interface {
	EnqueueDelete(ctx context.Context, blobKey string) error
}

// HistoryCache is the optional fast path for a user's recent conversation
// window.
type HistoryCache interface {
	GetRecent(ctx context.Context, userID uint) ([]model.ConversationTurn, bool, error)
	SetRecent(ctx context.Context, userID uint, turns []model.ConversationTurn) error
	Invalidate(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}
