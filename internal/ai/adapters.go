package ai

import (
	"context"

	"go.uber.org/zap"
)

// Embedder binds the client to one embedding configuration. It is the
// function-shaped dependency the services consume; only input sizes reach
// the logs, never the text itself.
type Embedder struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
	logger *zap.Logger
}

func NewEmbedder(client *OpenAICompatibleClient, cfg EmbeddingConfig, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{client: client, cfg: cfg, logger: logger}
}

// Dimension returns the fixed vector width this embedder produces.
func (e *Embedder) Dimension() int { return e.cfg.Dimension }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("embedding text", zap.Int("input_chars", len(text)))
	return e.client.Embed(ctx, e.cfg, text)
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	total := 0
	for _, t := range texts {
		total += len(t)
	}
	e.logger.Debug("embedding batch", zap.Int("count", len(texts)), zap.Int("total_chars", total))
	return e.client.EmbedBatch(ctx, e.cfg, texts)
}

// Generator binds the client to one chat model configuration.
type Generator struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
	logger *zap.Logger
}

func NewGenerator(client *OpenAICompatibleClient, cfg ChatConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, cfg: cfg, logger: logger}
}

// Generate sends the rendered prompt as a single user message and returns
// the model's answer.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating answer", zap.Int("prompt_chars", len(prompt)))
	return g.client.Complete(ctx, g.cfg, []ChatMessage{{Role: "user", Content: prompt}})
}
