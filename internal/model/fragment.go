package model

import (
	"encoding/json"
	"time"
)

// Fragment is one embedded chunk of a document. The vector is stored as a
// JSON array of float32 for portability; all fragments in the store share
// one dimensionality, enforced at ingestion time.
type Fragment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DocumentID    uint      `gorm:"not null;index" json:"document_id"`
	SequenceIndex int       `gorm:"not null" json:"sequence_index"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	Embedding     string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Vector returns the parsed embedding slice; empty on parse error.
func (f *Fragment) Vector() []float32 {
	if f.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(f.Embedding), &v)
	return v
}

// SetVector stores the embedding as JSON.
func (f *Fragment) SetVector(vec []float32) {
	if len(vec) == 0 {
		f.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	f.Embedding = string(b)
}
