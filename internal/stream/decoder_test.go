package stream

import (
	"testing"
)

func feedAll(d *Decoder, chunks ...string) []Frame {
	var frames []Frame
	for _, c := range chunks {
		frames = append(frames, d.Feed([]byte(c))...)
	}
	return frames
}

func TestDecoderSplitObjectProcessedOnce(t *testing.T) {
	d := NewDecoder()

	frames := d.Feed([]byte("{\"type\":\"tool-result\",\"toolCallId\":\"c1\",\n"))
	if len(frames) != 0 {
		t.Fatalf("incomplete object yielded %d frames", len(frames))
	}
	if !d.Buffered() {
		t.Error("decoder should hold the incomplete object")
	}

	frames = d.Feed([]byte("\"result\":\"ok\"}\n0:\"after\"\n"))
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Kind != FrameToolResult || frames[0].ToolCallID != "c1" || string(frames[0].Result) != `"ok"` {
		t.Errorf("unexpected tool result frame: %+v", frames[0])
	}
	if frames[1].Kind != FrameTextDelta {
		t.Errorf("second frame kind = %v", frames[1].Kind)
	}

	if rest := d.Close(); len(rest) != 0 {
		t.Errorf("Close() yielded %d frames", len(rest))
	}
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	frames := feedAll(NewDecoder(), "\n\n0:\"x\"\n\r\n")
	if len(frames) != 1 || frames[0].Delta != "x" {
		t.Errorf("frames = %+v", frames)
	}
}

func TestDecoderMalformedIsolated(t *testing.T) {
	frames := feedAll(NewDecoder(),
		"{\"type\":\"text-delta\",\"delta\":\"a\"}\n",
		"{\"type\":\"text-delta\",\"delta\":}\n",
		"{\"type\":\"text-delta\",\"delta\":\"b\"}\n",
	)
	want := []FrameKind{FrameTextDelta, FrameMalformed, FrameTextDelta}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d", len(frames), len(want))
	}
	for i, kind := range want {
		if frames[i].Kind != kind {
			t.Errorf("frame %d kind = %v, want %v", i, frames[i].Kind, kind)
		}
	}
}

func TestDecoderCloseFlushesTrailingLine(t *testing.T) {
	d := NewDecoder()
	if n := len(d.Feed([]byte("0:\"a\"\n0:\"b\""))); n != 1 {
		t.Fatalf("Feed() yielded %d frames, want 1", n)
	}

	frames := d.Close()
	if len(frames) != 1 || frames[0].Delta != "b" {
		t.Errorf("Close() = %+v", frames)
	}
	if d.Buffered() {
		t.Error("nothing should be buffered after Close")
	}
}

func TestDecoderCloseDropsTrailingLineWhenDisabled(t *testing.T) {
	d := NewDecoder(WithFlushTrailing(false))
	d.Feed([]byte("0:\"a\"\n0:\"b\""))
	if frames := d.Close(); len(frames) != 0 {
		t.Errorf("Close() = %+v, want none", frames)
	}
}

func TestDecoderCloseWithUnterminatedObject(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("{\"type\":\"text-delta\",\n"))

	frames := d.Close()
	if len(frames) != 1 || frames[0].Kind != FrameMalformed {
		t.Errorf("Close() = %+v, want one malformed frame", frames)
	}
}

func TestDecoderFormatsAgree(t *testing.T) {
	structured := feedAll(NewDecoder(),
		`{"type":"text-delta","delta":"Hi"}`+"\n",
		`{"type":"tool-call","toolCallId":"c1","toolName":"search_marketplace","args":{"query":"lamp"}}`+"\n",
		`{"type":"tool-result","toolCallId":"c1","toolName":"search_marketplace","result":[]}`+"\n",
		`{"type":"finish","finishReason":"stop"}`+"\n",
	)
	legacy := feedAll(NewDecoder(),
		`0:"Hi"`+"\n",
		`9:{"toolCallId":"c1","toolName":"search_marketplace","args":{"query":"lamp"}}`+"\n",
		`a:{"toolCallId":"c1","toolName":"search_marketplace","result":[]}`+"\n",
		`d:{"finishReason":"stop"}`+"\n",
	)

	if len(structured) != 4 || len(legacy) != 4 {
		t.Fatalf("got %d structured and %d legacy frames, want 4 each", len(structured), len(legacy))
	}
	for i := range structured {
		s, l := structured[i], legacy[i]
		if s.Kind != l.Kind || s.Delta != l.Delta || s.ToolCallID != l.ToolCallID ||
			s.ToolName != l.ToolName || string(s.Result) != string(l.Result) || s.FinishReason != l.FinishReason {
			t.Errorf("frame %d differs:\nstructured %+v\nlegacy     %+v", i, s, l)
		}
	}
}
