// Package stream decodes the chat endpoint's chunked response body into frames.
//
// The body is line oriented. Each completed line is either a structured JSON
// event ({"type":"text-delta",...}) or a legacy tagged token (0:"Hi"). Both
// formats decode to the same Frame values so callers never need to know which
// one the backend speaks.
package stream

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LineBuffer accumulates raw chunks and yields completed lines.
// Decoding is stateful: a rune split across two chunks is held back until
// its remaining bytes arrive. Invalid bytes decode to U+FFFD.
type LineBuffer struct {
	dec     transform.Transformer
	pending []byte // undecoded tail (incomplete rune)
	partial string // decoded text after the last newline
}

// NewLineBuffer creates an empty line buffer
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{dec: unicode.UTF8.NewDecoder()}
}

// Append decodes chunk and returns every line it completes, in order.
// The trailing unterminated segment is retained for the next call.
func (b *LineBuffer) Append(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	text := b.partial + b.decode(chunk, false)
	parts := strings.Split(text, "\n")
	b.partial = parts[len(parts)-1]

	lines := parts[:len(parts)-1]
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Flush returns the unterminated tail, including any held partial rune, and
// resets the buffer. ok is false when nothing was buffered.
func (b *LineBuffer) Flush() (tail string, ok bool) {
	tail = b.partial
	if len(b.pending) > 0 {
		tail += b.decode(nil, true)
	}
	b.Reset()
	tail = strings.TrimSuffix(tail, "\r")
	return tail, tail != ""
}

// Reset discards all buffered data
func (b *LineBuffer) Reset() {
	b.pending = nil
	b.partial = ""
	b.dec.Reset()
}

// Pending returns the number of buffered bytes not yet returned as lines
func (b *LineBuffer) Pending() int {
	return len(b.partial) + len(b.pending)
}

func (b *LineBuffer) decode(chunk []byte, atEOF bool) string {
	src := append(b.pending, chunk...)
	b.pending = nil

	// Each invalid byte can expand to a 3-byte replacement rune.
	dst := make([]byte, len(src)*3+utf8.UTFMax)
	var out strings.Builder
	for {
		nDst, nSrc, err := b.dec.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch err {
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			b.pending = append([]byte(nil), src...)
		}
		break
	}
	return out.String()
}
