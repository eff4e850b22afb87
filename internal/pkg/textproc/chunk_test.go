package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	s := DefaultSplitter()
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\t  "))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := DefaultSplitter()
	chunks := s.Split("just a short note")
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a short note", chunks[0])
}

func TestSplitUnbrokenTextExactWindows(t *testing.T) {
	// 2000 runes with no natural boundary, size 500, no overlap:
	// four contiguous windows covering the whole input.
	text := strings.Repeat("a", 2000)
	s := Splitter{ChunkSize: 500, Overlap: 0, MinChunkSize: 5, MaxChunkSize: 10000, KeepSeparators: true}

	chunks := s.Split(text)
	require.Len(t, chunks, 4)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 500)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitOverlapWindowsMatch(t *testing.T) {
	text := strings.Repeat("x", 1000)
	s := Splitter{ChunkSize: 300, Overlap: 50, MinChunkSize: 5, MaxChunkSize: 10000, KeepSeparators: true}

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for i := 0; i < len(chunks)-1; i++ {
		cur := []rune(chunks[i])
		next := []rune(chunks[i+1])
		tail := string(cur[len(cur)-50:])
		head := string(next[:50])
		assert.Equal(t, tail, head, "chunk %d/%d overlap", i, i+1)
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("p", 60)
	para2 := strings.Repeat("q", 60)
	text := para1 + "\n\n" + para2
	s := Splitter{ChunkSize: 100, Overlap: 0, MinChunkSize: 5, MaxChunkSize: 10000, KeepSeparators: true}

	chunks := s.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, para1+"\n\n", chunks[0])
	assert.Equal(t, para2, chunks[1])
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	text := "First sentence here. " + strings.Repeat("w", 80)
	s := Splitter{ChunkSize: 60, Overlap: 0, MinChunkSize: 5, MaxChunkSize: 10000, KeepSeparators: true}

	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "First sentence here. ", chunks[0])
}

func TestSplitWordBoundaryFallback(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	s := Splitter{ChunkSize: 20, Overlap: 0, MinChunkSize: 2, MaxChunkSize: 10000, KeepSeparators: true}

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	// No chunk may cut a word in half: every boundary falls on whitespace.
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c, " "), "chunk %q should end at a word boundary", c)
	}
}

func TestSplitNeverLosesText(t *testing.T) {
	texts := []string{
		strings.Repeat("no-spaces-", 100),
		"short",
		strings.Repeat("word ", 500),
		"para one.\n\npara two.\n\npara three.",
	}
	s := Splitter{ChunkSize: 120, Overlap: 0, MinChunkSize: 5, MaxChunkSize: 10000, KeepSeparators: true}
	for _, text := range texts {
		chunks := s.Split(text)
		assert.Equal(t, text, strings.Join(chunks, ""))
	}
}

func TestSplitDeterministicOrder(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	s := DefaultSplitter()
	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitTrimsWithoutSeparators(t *testing.T) {
	text := "one two three.\n\nfour five six."
	s := Splitter{ChunkSize: 16, Overlap: 0, MinChunkSize: 2, MaxChunkSize: 10000, KeepSeparators: false}
	for _, c := range s.Split(text) {
		assert.Equal(t, strings.TrimSpace(c), c)
	}
}
