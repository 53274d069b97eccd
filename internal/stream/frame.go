package stream

import "encoding/json"

// FrameKind classifies a decoded line
type FrameKind int

const (
	FrameUnrecognized FrameKind = iota
	FrameTextDelta
	FrameToolCall
	FrameToolResult
	FrameFinish
	// FrameMalformed is a line that looked complete but failed to decode.
	FrameMalformed
)

func (k FrameKind) String() string {
	switch k {
	case FrameTextDelta:
		return "text-delta"
	case FrameToolCall:
		return "tool-call"
	case FrameToolResult:
		return "tool-result"
	case FrameFinish:
		return "finish"
	case FrameMalformed:
		return "malformed"
	default:
		return "unrecognized"
	}
}

// Format is the wire format a frame arrived in
type Format int

const (
	FormatUnknown Format = iota
	FormatStructured
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatStructured:
		return "structured"
	case FormatLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Frame is one classified line. Only the fields relevant to Kind are set.
type Frame struct {
	Kind   FrameKind
	Format Format

	Delta string

	ToolCallID string
	ToolName   string
	Args       json.RawMessage
	Result     json.RawMessage

	FinishReason string

	// Raw is the line the frame was decoded from.
	Raw string
	// Err is set for FrameMalformed.
	Err error
}
