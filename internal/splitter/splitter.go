// Package splitter turns page text into overlapping chunks bounded by a
// target size, preferring natural boundaries so context is not severed
// mid-sentence.
package splitter

import (
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the target overlap between consecutive chunks.
	DefaultChunkOverlap = 200
)

// Splitter splits text into overlapping chunks. The zero value is not
// usable; construct with New.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a Splitter with the given target chunk size and overlap.
// Non-positive size falls back to DefaultChunkSize; overlap is clamped
// below the chunk size.
func New(chunkSize, overlap int) Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split splits text into chunks of at most the target size, with
// consecutive chunks overlapping by approximately the configured overlap.
// Splitting is deterministic: the same input always yields the same
// sequence. Whitespace-only input yields zero chunks. A single atomic
// token longer than the chunk size is kept whole, overrunning the target.
//
// Boundary preference within the size window: paragraph break, newline,
// sentence end, word boundary, hard cut.
func (s Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Size is measured in runes for consistency across scripts.
	runes := []rune(text)
	var chunks []string

	start := 0
	for start < len(runes) {
		end := start + s.chunkSize

		if end >= len(runes) {
			appendChunk(&chunks, string(runes[start:]))
			break
		}

		splitPoint := findSplitPoint(runes, start, end)
		if splitPoint <= start {
			// No boundary inside the window: an unbreakable token. Extend to
			// the next whitespace (or end of text), overrunning the target.
			splitPoint = end
			for splitPoint < len(runes) && !unicode.IsSpace(runes[splitPoint]) {
				splitPoint++
			}
		}

		appendChunk(&chunks, string(runes[start:splitPoint]))

		next := splitPoint - s.overlap
		if next <= start {
			// Overlap would prevent forward progress.
			next = splitPoint
		}
		start = next
	}

	return chunks
}

// findSplitPoint returns the best boundary in runes[start:end], or start
// when the window has no boundary at all.
func findSplitPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])

	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return start + runeLen(window[:i+2])
	}
	if i := strings.LastIndex(window, "\n"); i > 0 {
		return start + runeLen(window[:i+1])
	}
	if i := strings.LastIndex(window, ". "); i > 0 {
		return start + runeLen(window[:i+2])
	}
	if i := strings.LastIndex(window, " "); i > 0 {
		return start + runeLen(window[:i+1])
	}
	return start
}

// runeLen converts a byte offset within a window back to a rune count.
func runeLen(s string) int {
	return len([]rune(s))
}

// appendChunk trims trailing whitespace noise and drops blank chunks.
func appendChunk(chunks *[]string, chunk string) {
	trimmed := strings.TrimSpace(chunk)
	if trimmed == "" {
		return
	}
	*chunks = append(*chunks, trimmed)
}
