package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_EmptyRender(t *testing.T) {
	s := NewMemoryStore(10)
	out, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, "**Conversation:**", out)
}

func TestMemoryStore_Render(t *testing.T) {
	s := NewMemoryStore(10)
	require.NoError(t, s.Append("alice", "hello"))
	require.NoError(t, s.Append("bob", "hi there"))

	out, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, "**Recent Conversation:**\nalice: hello\nbob: hi there", out)
}

func TestMemoryStore_DropOldest(t *testing.T) {
	const max = 5
	s := NewMemoryStore(max)

	for i := 1; i <= 12; i++ {
		require.NoError(t, s.Append("user", fmt.Sprintf("message %d", i)))
	}

	out, err := s.Render()
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, max+1) // header + max entries

	// Last max entries, oldest first.
	for i := 0; i < max; i++ {
		assert.Equal(t, fmt.Sprintf("user: message %d", 8+i), lines[1+i])
	}
}

func TestMemoryStore_Reset(t *testing.T) {
	s := NewMemoryStore(3)
	require.NoError(t, s.Append("alice", "hello"))
	require.NoError(t, s.Reset())

	out, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, "**Conversation:**", out)
}
