// Package vector answers nearest-fragment queries over the fragments
// persisted by ingestion. The scan is exact: every candidate vector is
// scored, so identical inputs always return identical results.
package vector

import (
	"fmt"
	"math"
	"sort"

	"docuchat/internal/model"
)

// FragmentSource loads candidate fragments. The caller scopes the search
// by passing only the document ids it may read.
type FragmentSource interface {
	ListByDocumentIDs(documentIDs []uint) ([]model.Fragment, error)
}

type Store struct {
	src FragmentSource
}

func NewStore(src FragmentSource) *Store {
	return &Store{src: src}
}

// Match is one retrieval hit, nearest first.
type Match struct {
	Fragment model.Fragment
	Distance float64
}

// Nearest returns the k fragments closest to query by L2 distance, scoped
// to the given documents. Fragments whose stored vector has a different
// width than query are skipped. Equal distances are ordered by fragment id
// so repeated calls are deterministic.
func (s *Store) Nearest(query []float32, documentIDs []uint, k int) ([]Match, error) {
	if k <= 0 || len(documentIDs) == 0 {
		return nil, nil
	}

	fragments, err := s.src.ListByDocumentIDs(documentIDs)
	if err != nil {
		return nil, fmt.Errorf("load fragments failed: %w", err)
	}

	matches := make([]Match, 0, len(fragments))
	for _, f := range fragments {
		vec := f.Vector()
		if len(vec) != len(query) {
			continue
		}
		matches = append(matches, Match{Fragment: f, Distance: l2Distance(query, vec)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Fragment.ID < matches[j].Fragment.ID
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
