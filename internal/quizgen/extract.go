package quizgen

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNoText is returned when a document yields no usable text.
var ErrNoText = errors.New("no extractable text in document")

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	Extract(data []byte, maxChars int) (string, error)
}

// DocumentTextExtractor pulls printable text runs out of a document,
// skipping binary structure. Good enough for text-bearing PDFs; scanned
// documents yield ErrNoText.
type DocumentTextExtractor struct{}

// NewDocumentTextExtractor constructs DocumentTextExtractor.
func NewDocumentTextExtractor() *DocumentTextExtractor {
	return &DocumentTextExtractor{}
}

const minRunLength = 4

// Extract collects printable runs up to maxChars characters.
func (e *DocumentTextExtractor) Extract(data []byte, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = 10000
	}

	var out strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() >= minRunLength {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(run.String())
		}
		run.Reset()
	}

	for _, b := range data {
		if out.Len() >= maxChars {
			break
		}
		r := rune(b)
		if r < unicode.MaxASCII && (unicode.IsPrint(r) || r == '\n') && r != '\\' {
			if r == '\n' {
				r = ' '
			}
			run.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	text := strings.Join(strings.Fields(out.String()), " ")
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	if len(text) < minRunLength*2 {
		return "", ErrNoText
	}
	return text, nil
}
