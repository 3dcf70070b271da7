package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "[at]everyone hi [at]here", Sanitize("@everyone hi @here"))
	assert.Equal(t, "no mentions", Sanitize("no mentions"))
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{"@everyone", "a@b@c", "[at]already", "", "@@@@"}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once))
		assert.NotContains(t, Sanitize(in), "@")
	}
}

func TestChunk_Short(t *testing.T) {
	chunks := Chunk("hello", MaxChunkSize)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestChunk_Empty(t *testing.T) {
	chunks := Chunk("", MaxChunkSize)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0])
}

func TestChunk_RoundTrip(t *testing.T) {
	for _, length := range []int{1999, 2000, 2001, 4000, 4001, 5555} {
		text := strings.Repeat("x", length-1) + "\n" // keep a line break in play
		chunks := Chunk(text, MaxChunkSize)

		want := (length + MaxChunkSize - 1) / MaxChunkSize
		assert.Len(t, chunks, want, "length %d", length)
		assert.Equal(t, text, strings.Join(chunks, ""), "length %d", length)
	}
}

func TestChunk_NoOversizedParts(t *testing.T) {
	chunks := Chunk(strings.Repeat("ab\n", 3000), MaxChunkSize)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), MaxChunkSize)
	}
}
