package stream

import (
	"errors"
	"testing"

	apierrors "github.com/diogo/campuschat/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		kind   FrameKind
		format Format
		check  func(t *testing.T, f Frame)
	}{
		{
			name:   "structured text delta",
			line:   `{"type":"text-delta","delta":"Hel"}`,
			kind:   FrameTextDelta,
			format: FormatStructured,
			check: func(t *testing.T, f Frame) {
				if f.Delta != "Hel" {
					t.Errorf("Delta = %q, want %q", f.Delta, "Hel")
				}
			},
		},
		{
			name:   "structured text delta camel case",
			line:   `{"type":"text-delta","textDelta":"lo"}`,
			kind:   FrameTextDelta,
			format: FormatStructured,
			check: func(t *testing.T, f Frame) {
				if f.Delta != "lo" {
					t.Errorf("Delta = %q, want %q", f.Delta, "lo")
				}
			},
		},
		{
			name:   "structured tool call",
			line:   `{"type":"tool-call","toolCallId":"c1","toolName":"search_marketplace","args":{"query":"lamp"}}`,
			kind:   FrameToolCall,
			format: FormatStructured,
			check: func(t *testing.T, f Frame) {
				if f.ToolCallID != "c1" {
					t.Errorf("ToolCallID = %q, want %q", f.ToolCallID, "c1")
				}
				if f.ToolName != "search_marketplace" {
					t.Errorf("ToolName = %q, want %q", f.ToolName, "search_marketplace")
				}
				if string(f.Args) != `{"query":"lamp"}` {
					t.Errorf("Args = %q, want %q", string(f.Args), `{"query":"lamp"}`)
				}
			},
		},
		{
			name:   "structured tool result",
			line:   `{"type":"tool-result","toolCallId":"c1","toolName":"search_marketplace","result":{"products":[]}}`,
			kind:   FrameToolResult,
			format: FormatStructured,
			check: func(t *testing.T, f Frame) {
				if string(f.Result) != `{"products":[]}` {
					t.Errorf("Result = %q, want %q", string(f.Result), `{"products":[]}`)
				}
			},
		},
		{
			name:   "structured finish",
			line:   `{"type":"finish","finishReason":"stop"}`,
			kind:   FrameFinish,
			format: FormatStructured,
			check: func(t *testing.T, f Frame) {
				if f.FinishReason != "stop" {
					t.Errorf("FinishReason = %q, want %q", f.FinishReason, "stop")
				}
			},
		},
		{
			name:   "structured unknown type",
			line:   `{"type":"start-step"}`,
			kind:   FrameUnrecognized,
			format: FormatStructured,
		},
		{
			name:   "event stream prefix",
			line:   `data: {"type":"text-delta","delta":"x"}`,
			kind:   FrameTextDelta,
			format: FormatStructured,
		},
		{
			name:   "event stream done",
			line:   `data: [DONE]`,
			kind:   FrameFinish,
			format: FormatStructured,
		},
		{
			name:   "legacy text delta",
			line:   `0:"Hello \"there\""`,
			kind:   FrameTextDelta,
			format: FormatLegacy,
			check: func(t *testing.T, f Frame) {
				if f.Delta != `Hello "there"` {
					t.Errorf("Delta = %q, want %q", f.Delta, `Hello "there"`)
				}
			},
		},
		{
			name:   "legacy tool call",
			line:   `9:{"toolCallId":"c2","toolName":"search_marketplace","args":{"query":"desk"}}`,
			kind:   FrameToolCall,
			format: FormatLegacy,
			check: func(t *testing.T, f Frame) {
				if f.ToolCallID != "c2" {
					t.Errorf("ToolCallID = %q, want %q", f.ToolCallID, "c2")
				}
			},
		},
		{
			name:   "legacy tool result",
			line:   `a:{"toolCallId":"c2","result":"done"}`,
			kind:   FrameToolResult,
			format: FormatLegacy,
			check: func(t *testing.T, f Frame) {
				if string(f.Result) != `"done"` {
					t.Errorf("Result = %q, want %q", string(f.Result), `"done"`)
				}
			},
		},
		{
			name:   "legacy finish",
			line:   `d:{"finishReason":"stop","usage":{"promptTokens":1}}`,
			kind:   FrameFinish,
			format: FormatLegacy,
			check: func(t *testing.T, f Frame) {
				if f.FinishReason != "stop" {
					t.Errorf("FinishReason = %q, want %q", f.FinishReason, "stop")
				}
			},
		},
		{
			name:   "legacy finish without payload",
			line:   `d:`,
			kind:   FrameFinish,
			format: FormatLegacy,
		},
		{
			name:   "legacy unknown tag",
			line:   `8:[{"annotation":1}]`,
			kind:   FrameUnrecognized,
			format: FormatLegacy,
		},
		{
			name: "plain text",
			line: "hello world",
			kind: FrameUnrecognized,
		},
		{
			name: "balanced but invalid json",
			line: `{"type": text-delta}`,
			kind: FrameMalformed,
		},
		{
			name: "text delta without delta",
			line: `{"type":"text-delta"}`,
			kind: FrameMalformed,
		},
		{
			name: "legacy text not a string",
			line: `0:{"x":1}`,
			kind: FrameMalformed,
		},
		{
			name: "legacy tool result not an object",
			line: `a:[1,2]`,
			kind: FrameMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Classify(tt.line)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if f.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", f.Kind, tt.kind)
			}
			if tt.format != FormatUnknown && f.Format != tt.format {
				t.Errorf("Format = %v, want %v", f.Format, tt.format)
			}
			if tt.kind == FrameMalformed && !apierrors.IsParseError(f.Err) {
				t.Errorf("expected ParseError, got %v", f.Err)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestClassifyIncomplete(t *testing.T) {
	_, err := Classify(`{"type":"tool-result","result":{"products":[`)
	if !errors.Is(err, ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`{}`, true},
		{`{"a":{"b":1}}`, true},
		{`{"a":{"b":1}`, false},
		{`{"a":"}"`, false},
		{`{"a":"{"}`, true},
		{`{"a":"\"{"}`, true},
		{`{"a":"\\"}`, true},
		{`{"a":"unterminated`, false},
		{`{}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Balanced(tt.in); got != tt.want {
				t.Errorf("Balanced(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFrameKindString(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{FrameTextDelta.String(), "text-delta"},
		{FrameToolResult.String(), "tool-result"},
		{FrameKind(99).String(), "unrecognized"},
		{FormatLegacy.String(), "legacy"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
