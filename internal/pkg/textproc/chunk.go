package textproc

import "strings"

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 100
	defaultMinChunkSize = 5
	defaultMaxChunkSize = 10000
)

// Splitter cuts text into overlapping chunks for embedding. Sizes are rune
// counts; budgets hold for any input because a chunk is always a contiguous
// slice of the original text. Boundaries are preferred in the order
// paragraph, sentence, word; when none exists inside the budget the chunk
// is cut mid-word rather than dropping text.
type Splitter struct {
	ChunkSize      int
	Overlap        int
	MinChunkSize   int
	MaxChunkSize   int
	KeepSeparators bool
}

// DefaultSplitter returns the splitter configuration used for ingestion.
func DefaultSplitter() Splitter {
	return Splitter{
		ChunkSize:      defaultChunkSize,
		Overlap:        defaultChunkOverlap,
		MinChunkSize:   defaultMinChunkSize,
		MaxChunkSize:   defaultMaxChunkSize,
		KeepSeparators: true,
	}
}

// Split returns the chunks of text in reading order. Whitespace-only input
// yields no chunks. The last Overlap runes of chunk i reappear as the first
// runes of chunk i+1.
func (s Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	size := s.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	if s.MaxChunkSize > 0 && size > s.MaxChunkSize {
		size = s.MaxChunkSize
	}
	overlap := s.Overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	minSize := s.MinChunkSize
	if minSize < 0 {
		minSize = 0
	}
	if minSize > size {
		minSize = size
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, s.render(runes[start:]))
			break
		}
		if b := boundaryBefore(runes, start+minSize, end); b > start {
			end = b
		}
		chunks = append(chunks, s.render(runes[start:end]))

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func (s Splitter) render(chunk []rune) string {
	out := string(chunk)
	if !s.KeepSeparators {
		out = strings.TrimSpace(out)
	}
	return out
}

// boundaryBefore finds the best cut position in (lo, hi], scanning for the
// strongest natural boundary closest to hi. Returns 0 when the window holds
// no boundary at all, in which case the caller cuts at hi.
func boundaryBefore(runes []rune, lo, hi int) int {
	if lo < 1 {
		lo = 1
	}
	paragraph, sentence, word := 0, 0, 0
	for i := hi; i >= lo; i-- {
		prev := runes[i-1]
		if prev == '\n' {
			if paragraph == 0 && i >= 2 && runes[i-2] == '\n' {
				paragraph = i
				break
			}
			if sentence == 0 {
				sentence = i
			}
			continue
		}
		if i < len(runes) && isSpace(runes[i]) {
			if sentence == 0 && (prev == '.' || prev == '!' || prev == '?') {
				sentence = i + 1
				continue
			}
			if word == 0 {
				word = i + 1
			}
		}
	}
	switch {
	case paragraph > 0 && paragraph <= hi:
		return paragraph
	case sentence > 0 && sentence <= hi:
		return sentence
	case word > 0 && word <= hi:
		return word
	}
	return 0
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
