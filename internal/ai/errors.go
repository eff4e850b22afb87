package ai

import "fmt"

// EmbeddingError is a transport or model failure from the embedding API.
// Callers must abort the enclosing operation; substituting a zero vector
// would silently poison the index.
type EmbeddingError struct {
	Status int
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("embedding failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError is a transport or model failure from the chat
// completion API.
type GenerationError struct {
	Status int
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
