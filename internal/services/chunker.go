package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// TextChunker splits long catalog documents into overlapping pieces small
// enough to embed.
type TextChunker interface {
	Chunk(text string) []string
}

type textChunker struct {
	size    int
	overlap int
}

func NewTextChunker(size, overlap int) TextChunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &textChunker{size: size, overlap: overlap}
}

// Chunk implements TextChunker. Paragraphs are kept whole where they fit;
// longer ones are broken on sentence boundaries.
func (c *textChunker) Chunk(text string) []string {
	var (
		chunks  []string
		current string
		pieces  int
	)

	add := func(piece, sep string) {
		if pieces > 0 && utf8.RuneCountInString(current)+len(sep)+utf8.RuneCountInString(piece) > c.size {
			chunks = append(chunks, current)
			current = lastRunes(current, c.overlap)
			pieces = 0
		}
		if current != "" {
			current += sep
		}
		current += piece
		pieces++
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= c.size {
			add(para, "\n\n")
			continue
		}
		for _, sentence := range splitSentences(para) {
			add(sentence, " ")
		}
	}

	if pieces > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
