package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Embed returns the embedding vector for the given text.
func (c *OpenAICompatibleClient) Embed(ctx context.Context, cfg EmbeddingConfig, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &EmbeddingError{Err: errors.New("embedding input is empty")}
	}

	vectors, err := c.embed(ctx, cfg, text)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, &EmbeddingError{Err: errors.New("empty embedding in response")}
	}
	return vectors[0], nil
}

// EmbedBatch returns embeddings for multiple texts in one call, in input
// order. Providers commonly cap the array size, so callers batch.
func (c *OpenAICompatibleClient) EmbedBatch(ctx context.Context, cfg EmbeddingConfig, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := c.embed(ctx, cfg, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, &EmbeddingError{Err: fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(vectors))}
	}
	return vectors, nil
}

func (c *OpenAICompatibleClient) embed(ctx context.Context, cfg EmbeddingConfig, input interface{}) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"model": cfg.Model,
		"input": input,
	}

	raw, status, err := c.post(ctx, cfg.BaseURL, cfg.APIKey, "/embeddings", reqBody)
	if err != nil {
		return nil, &EmbeddingError{Status: status, Err: err}
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("parse embedding json failed: %w", err)}
	}

	result := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		vec := parsed.Data[i].Embedding
		if cfg.Dimension > 0 && len(vec) != cfg.Dimension {
			return nil, &EmbeddingError{Err: fmt.Errorf("embedding dimension mismatch: want %d, got %d", cfg.Dimension, len(vec))}
		}
		result[i] = vec
	}
	return result, nil
}
