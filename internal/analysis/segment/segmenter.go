// Package segment splits raw dictation text into sentence units suitable
// for classification.  Dictated speech arrives in arbitrary chunks, so the
// segmenter distinguishes terminated sentences from a trailing fragment that
// may still be completed by the next chunk.
package segment

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinLength is the minimum rune count for a fragment to be treated
// as a classifiable sentence.  Shorter fragments are discarded as dictation
// noise ("um", "okay", stray punctuation).
const DefaultMinLength = 10

// Segmenter splits text on sentence terminators.
type Segmenter struct {
	minLength int
}

// NewSegmenter builds a segmenter.  A non-positive minLength selects
// DefaultMinLength.
func NewSegmenter(minLength int) *Segmenter {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Segmenter{minLength: minLength}
}

// MinLength returns the configured minimum sentence length.
func (s *Segmenter) MinLength() int {
	return s.minLength
}

// Segment splits text into trimmed sentences, dropping fragments shorter
// than the minimum length.  A trailing fragment without a terminator is
// kept when it meets the minimum; use SegmentIncremental when the caller
// needs to hold such a tail back for the next chunk.
func (s *Segmenter) Segment(text string) []string {
	complete, rest := s.split(text)
	if tail := strings.TrimSpace(rest); runeLen(tail) >= s.minLength {
		complete = append(complete, tail)
	}
	return complete
}

// SegmentIncremental splits text into terminated sentences and returns the
// unterminated remainder verbatim.  The remainder is the buffer the caller
// prepends to the next chunk; it is never length-filtered because it may
// still grow into a full sentence.
func (s *Segmenter) SegmentIncremental(text string) (sentences []string, rest string) {
	complete, rest := s.split(text)
	return complete, rest
}

// split walks the text once, emitting a sentence at each terminator and
// returning everything after the final terminator untouched.
func (s *Segmenter) split(text string) (complete []string, rest string) {
	start := 0
	for i, r := range text {
		if !isTerminator(r) {
			continue
		}
		sentence := strings.TrimSpace(text[start:i])
		if runeLen(sentence) >= s.minLength {
			complete = append(complete, sentence)
		}
		start = i + len(string(r))
	}
	return complete, text[start:]
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
