package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    []string
	}{
		{
			name:    "empty text",
			text:    "",
			maxSize: 10,
			want:    nil,
		},
		{
			name:    "shorter than max",
			text:    "hello",
			maxSize: 10,
			want:    []string{"hello"},
		},
		{
			name:    "exact multiple",
			text:    "abcdef",
			maxSize: 3,
			want:    []string{"abc", "def"},
		},
		{
			name:    "final chunk shorter",
			text:    "abcdefg",
			maxSize: 3,
			want:    []string{"abc", "def", "g"},
		},
		{
			name:    "size one",
			text:    "abc",
			maxSize: 1,
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "size below one treated as one",
			text:    "ab",
			maxSize: 0,
			want:    []string{"a", "b"},
		},
		{
			// "é" is 2 bytes; a cut at byte 3 would land inside it.
			name:    "cut backed off to rune boundary",
			text:    "abécd",
			maxSize: 3,
			want:    []string{"ab", "éc", "d"},
		},
		{
			name:    "rune wider than max still split",
			text:    "é",
			maxSize: 1,
			want:    []string{"\xc3", "\xa9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Chunk(tt.text, tt.maxSize))
		})
	}
}

func TestChunkJoinRoundTrip(t *testing.T) {
	t.Parallel()

	texts := []string{
		"",
		"a",
		"The testator devised the residue of the estate to the surviving spouse.",
		strings.Repeat("community property ", 500),
		strings.Repeat("la propriété est transmise aux héritiers légaux ", 40),
	}

	for _, text := range texts {
		for _, size := range []int{1, 2, 7, 100, 4096} {
			chunks := Chunk(text, size)
			require.Equal(t, text, strings.Join(chunks, ""),
				"join(chunk(text, %d)) must reproduce the input", size)
			for i, c := range chunks {
				assert.LessOrEqual(t, len(c), size, "chunk %d exceeds max size", i)
				assert.NotEmpty(t, c)
				if size >= utf8.UTFMax {
					assert.True(t, utf8.ValidString(c), "chunk %d splits a rune at size %d", i, size)
				}
			}
		}
	}
}
