package stream

import (
	"errors"
	"strings"

	apierrors "github.com/diogo/campuschat/internal/errors"
)

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithFlushTrailing controls whether Close classifies an unterminated final
// line. When disabled the tail is discarded.
func WithFlushTrailing(enabled bool) DecoderOption {
	return func(d *Decoder) {
		d.flushTrailing = enabled
	}
}

// Decoder turns a sequence of body chunks into frames in arrival order.
// A JSON object split over several lines is held until its braces balance and
// is then classified exactly once.
type Decoder struct {
	buf           *LineBuffer
	carry         string
	hasCarry      bool
	flushTrailing bool
}

// NewDecoder creates a decoder. Trailing-line flushing is on by default.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		buf:           NewLineBuffer(),
		flushTrailing: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed consumes one chunk and returns the frames it completes
func (d *Decoder) Feed(chunk []byte) []Frame {
	var frames []Frame
	for _, line := range d.buf.Append(chunk) {
		if f, ok := d.line(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Close ends the stream and returns any frames left in the buffer.
// The decoder is reset and may be reused.
func (d *Decoder) Close() []Frame {
	tail, hasTail := d.buf.Flush()
	defer d.Reset()

	if !d.flushTrailing {
		return nil
	}

	var frames []Frame
	if hasTail {
		if f, ok := d.line(tail); ok {
			frames = append(frames, f)
		}
	}
	if d.hasCarry {
		frames = append(frames, Frame{
			Kind: FrameMalformed,
			Raw:  d.carry,
			Err:  apierrors.NewParseError("stream ended inside a JSON object", d.carry),
		})
	}
	return frames
}

// Reset discards buffered and carried data
func (d *Decoder) Reset() {
	d.buf.Reset()
	d.carry = ""
	d.hasCarry = false
}

// Buffered reports whether a partial line or an incomplete object is held
func (d *Decoder) Buffered() bool {
	return d.hasCarry || d.buf.Pending() > 0
}

func (d *Decoder) line(line string) (Frame, bool) {
	if d.hasCarry {
		line = d.carry + "\n" + line
		d.carry = ""
		d.hasCarry = false
	}

	if strings.TrimSpace(line) == "" {
		return Frame{}, false
	}

	f, err := Classify(line)
	if errors.Is(err, ErrIncomplete) {
		d.carry = line
		d.hasCarry = true
		return Frame{}, false
	}
	return f, true
}
