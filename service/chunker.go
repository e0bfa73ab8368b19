package service

import "strings"

const (
	// ElementChunkBudget is the character budget for chunks built from
	// parsed document elements.
	ElementChunkBudget = 500
	// ScrapeWindowSize is the fixed window width for chunks cut from
	// scraped page text.
	ScrapeWindowSize = 1000
)

// Chunker splits extracted text segments into bounded-size passages.
// The two implementations stay separate on purpose: parsed documents
// arrive as semantically meaningful elements, scraped pages as one
// flat blob, and the strategies exploit that difference.
type Chunker interface {
	Chunk(segments []string) []string
}

// ElementChunker accumulates consecutive element texts into a chunk
// until appending the next element would exceed the budget. A single
// element larger than the budget becomes its own chunk, so a chunk
// can overshoot by at most one appended element.
type ElementChunker struct {
	Budget int
}

func (c *ElementChunker) Chunk(segments []string) []string {
	budget := c.Budget
	if budget <= 0 {
		budget = ElementChunkBudget
	}

	var chunks []string
	current := ""
	for _, segment := range segments {
		text := strings.TrimSpace(segment)
		if text == "" {
			continue
		}
		if current == "" {
			current = text
			continue
		}
		if len(current)+len(text)+1 > budget {
			chunks = append(chunks, current)
			current = text
		} else {
			current = current + "\n" + text
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// WindowChunker slices each segment into fixed-width non-overlapping
// windows. Cuts are rune-aligned so multi-byte characters never split.
type WindowChunker struct {
	Width int
}

func (c *WindowChunker) Chunk(segments []string) []string {
	width := c.Width
	if width <= 0 {
		width = ScrapeWindowSize
	}

	var chunks []string
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		runes := []rune(segment)
		for start := 0; start < len(runes); start += width {
			end := start + width
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[start:end]))
		}
	}
	return chunks
}
