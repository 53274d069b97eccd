package stream

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/campuschat/internal/errors"
)

// ErrIncomplete reports a JSON line whose braces are not yet balanced.
// The caller must hold the line and join it with the following ones.
var ErrIncomplete = errors.New("incomplete frame")

// Structured event types
const (
	eventTextDelta  = "text-delta"
	eventToolCall   = "tool-call"
	eventToolResult = "tool-result"
	eventFinish     = "finish"
)

// Legacy single-character tags
const (
	tagTextDelta  = '0'
	tagToolCall   = '9'
	tagToolResult = 'a'
	tagFinish     = 'd'
)

const sseDataPrefix = "data:"

// Classify decodes one completed line. It returns ErrIncomplete for a JSON
// object with unbalanced braces; every other outcome, including decode
// failures, is reported through the returned Frame.
func Classify(line string) (Frame, error) {
	trimmed := strings.TrimSpace(line)

	// Event-stream transports prefix each event with "data:".
	if rest, ok := strings.CutPrefix(trimmed, sseDataPrefix); ok {
		trimmed = strings.TrimSpace(rest)
		if trimmed == "[DONE]" {
			return Frame{Kind: FrameFinish, Format: FormatStructured, Raw: line}, nil
		}
	}

	switch {
	case strings.HasPrefix(trimmed, "{"):
		if !Balanced(trimmed) {
			return Frame{}, ErrIncomplete
		}
		return classifyStructured(trimmed, line), nil
	case len(trimmed) >= 2 && trimmed[1] == ':':
		return classifyLegacy(trimmed[0], trimmed[2:], line), nil
	default:
		return Frame{Kind: FrameUnrecognized, Raw: line}, nil
	}
}

// Balanced reports whether every '{' in s outside a quoted string has a
// matching '}'. Backslash-escaped quotes do not end a string.
func Balanced(s string) bool {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
		}
	}

	// A surplus of closing braces will never balance; let the parser reject it.
	return depth <= 0 && !inString
}

func classifyStructured(payload, raw string) Frame {
	if !gjson.Valid(payload) {
		return malformed(raw, "invalid JSON event")
	}

	event := gjson.Parse(payload)
	switch event.Get("type").String() {
	case eventTextDelta:
		delta := first(event, "delta", "textDelta")
		if delta.Type != gjson.String {
			return malformed(raw, "text-delta event without string delta")
		}
		return Frame{Kind: FrameTextDelta, Format: FormatStructured, Delta: delta.String(), Raw: raw}

	case eventToolCall:
		return Frame{
			Kind:       FrameToolCall,
			Format:     FormatStructured,
			ToolCallID: event.Get("toolCallId").String(),
			ToolName:   event.Get("toolName").String(),
			Args:       rawJSON(first(event, "args", "input")),
			Raw:        raw,
		}

	case eventToolResult:
		result := first(event, "result", "output")
		if !result.Exists() {
			return malformed(raw, "tool-result event without result")
		}
		return Frame{
			Kind:       FrameToolResult,
			Format:     FormatStructured,
			ToolCallID: event.Get("toolCallId").String(),
			ToolName:   event.Get("toolName").String(),
			Args:       rawJSON(first(event, "args", "input")),
			Result:     rawJSON(result),
			Raw:        raw,
		}

	case eventFinish:
		return Frame{
			Kind:         FrameFinish,
			Format:       FormatStructured,
			FinishReason: event.Get("finishReason").String(),
			Raw:          raw,
		}
	}

	return Frame{Kind: FrameUnrecognized, Format: FormatStructured, Raw: raw}
}

func classifyLegacy(tag byte, payload, raw string) Frame {
	switch tag {
	case tagTextDelta:
		if !gjson.Valid(payload) {
			return malformed(raw, "invalid legacy text payload")
		}
		text := gjson.Parse(payload)
		if text.Type != gjson.String {
			return malformed(raw, "legacy text payload is not a string")
		}
		return Frame{Kind: FrameTextDelta, Format: FormatLegacy, Delta: text.String(), Raw: raw}

	case tagToolCall:
		obj, err := legacyObject(payload)
		if err != nil {
			return malformed(raw, err.Error())
		}
		return Frame{
			Kind:       FrameToolCall,
			Format:     FormatLegacy,
			ToolCallID: obj.Get("toolCallId").String(),
			ToolName:   obj.Get("toolName").String(),
			Args:       rawJSON(first(obj, "args", "input")),
			Raw:        raw,
		}

	case tagToolResult:
		obj, err := legacyObject(payload)
		if err != nil {
			return malformed(raw, err.Error())
		}
		result := first(obj, "result", "output")
		if !result.Exists() {
			return malformed(raw, "legacy tool result without result")
		}
		return Frame{
			Kind:       FrameToolResult,
			Format:     FormatLegacy,
			ToolCallID: obj.Get("toolCallId").String(),
			ToolName:   obj.Get("toolName").String(),
			Args:       rawJSON(first(obj, "args", "input")),
			Result:     rawJSON(result),
			Raw:        raw,
		}

	case tagFinish:
		f := Frame{Kind: FrameFinish, Format: FormatLegacy, Raw: raw}
		if gjson.Valid(payload) {
			f.FinishReason = gjson.Get(payload, "finishReason").String()
		}
		return f
	}

	return Frame{Kind: FrameUnrecognized, Format: FormatLegacy, Raw: raw}
}

func legacyObject(payload string) (gjson.Result, error) {
	if !gjson.Valid(payload) {
		return gjson.Result{}, errors.New("invalid legacy payload")
	}
	obj := gjson.Parse(payload)
	if !obj.IsObject() {
		return gjson.Result{}, errors.New("legacy payload is not an object")
	}
	return obj, nil
}

func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func rawJSON(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}

func malformed(raw, msg string) Frame {
	return Frame{
		Kind: FrameMalformed,
		Raw:  raw,
		Err:  apierrors.NewParseError(msg, raw),
	}
}
