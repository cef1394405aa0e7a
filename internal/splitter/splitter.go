// Package splitter breaks long canonical text into bounded-size chunks
// at paragraph boundaries, preserving order.
package splitter

import "strings"

// DefaultMaxLength is the default maximum chunk size in characters.
const DefaultMaxLength = 5000

// Splitter splits text on blank-line-delimited paragraph boundaries.
// It never splits inside a paragraph and is deterministic: the same
// input produces the same chunk boundaries on every run. Deduplication
// and idempotent re-ingest depend on that.
type Splitter struct {
	maxLength int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMaxLength sets the maximum chunk size in characters.
func WithMaxLength(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxLength = n
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxLength returns the configured maximum chunk size.
func (s *Splitter) MaxLength() int {
	return s.maxLength
}

// Split breaks content into ordered chunks. Content at or under the
// maximum is returned unchanged as the single chunk. Otherwise
// paragraphs accumulate greedily into a running chunk until appending
// the next paragraph would exceed the maximum, at which point the chunk
// is flushed and a new one starts. A single paragraph longer than the
// maximum becomes its own oversized chunk rather than being cut.
func (s *Splitter) Split(content string) []string {
	if content == "" {
		return nil
	}
	if len(content) <= s.maxLength {
		return []string{content}
	}

	paragraphs := splitParagraphs(content)

	var chunks []string
	var current strings.Builder
	for _, para := range paragraphs {
		if current.Len() > 0 && current.Len()+len("\n\n")+len(para) > s.maxLength {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitParagraphs splits on blank lines, dropping empty paragraphs.
func splitParagraphs(content string) []string {
	raw := strings.Split(content, "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
