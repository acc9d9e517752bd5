package prompt

import "unicode/utf8"

// Chunk splits text into ordered segments of at most maxSize bytes. Joining
// the returned segments reproduces the input exactly: no overlap, no
// trimming. Cuts are backed off to rune boundaries so a multi-byte rune is
// never split, except when maxSize is smaller than the rune itself.
// A maxSize below 1 is treated as 1.
func Chunk(text string, maxSize int) []string {
	if maxSize < 1 {
		maxSize = 1
	}
	if text == "" {
		return nil
	}

	chunks := make([]string, 0, (len(text)+maxSize-1)/maxSize)
	for start := 0; start < len(text); {
		end := start + maxSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		cut := end
		for cut > start && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == start {
			// The rune alone exceeds maxSize; split it rather than
			// emit an oversized chunk.
			cut = end
		}

		chunks = append(chunks, text[start:cut])
		start = cut
	}
	return chunks
}
