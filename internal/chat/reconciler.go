package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	apierrors "github.com/diogo/campuschat/internal/errors"
	"github.com/diogo/campuschat/internal/models"
	"github.com/diogo/campuschat/internal/stream"
	"github.com/diogo/campuschat/internal/tools"
)

const defaultChunkSize = 4096

// MessageSink receives message list changes
type MessageSink interface {
	AddMessage(sessionID string, msg models.Message)
	UpdateMessage(sessionID, messageID, content string) bool
	RemoveMessage(sessionID, messageID string)
}

// PanelSink receives panel open requests
type PanelSink interface {
	OpenPanel(update models.PanelUpdate)
}

// ReconcilerOption configures a Reconciler
type ReconcilerOption func(*Reconciler)

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithIdleTimeout fails the stream when no data arrives for d. Zero disables it.
func WithIdleTimeout(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.idleTimeout = d
	}
}

// WithTrailingFlush controls whether an unterminated final line is applied
func WithTrailingFlush(enabled bool) ReconcilerOption {
	return func(r *Reconciler) {
		r.flushTrailing = enabled
	}
}

// WithChunkSize sets the read buffer size
func WithChunkSize(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// Reconciler applies a streamed response to one in-flight assistant message
type Reconciler struct {
	messages      MessageSink
	panels        PanelSink
	logger        *slog.Logger
	idleTimeout   time.Duration
	flushTrailing bool
	chunkSize     int
}

// NewReconciler creates a reconciler that pushes to the given sinks
func NewReconciler(messages MessageSink, panels PanelSink, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		messages:      messages,
		panels:        panels,
		logger:        slog.Default(),
		flushTrailing: true,
		chunkSize:     defaultChunkSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result summarizes one reconciled stream
type Result struct {
	// Message is the assistant message as built from the stream.
	Message      models.Message
	Finished     bool
	FinishReason string
	Frames       int
	Malformed    int
	// ToolCalls are the tool-call frames seen, in order, for diagnostics.
	ToolCalls []models.ToolInvocation
}

// inFlight is the mutable state of the message being built
type inFlight struct {
	sessionID string
	text      strings.Builder
	result    Result
	calls     map[string]models.ToolInvocation
}

// Run reads body to the end, applying every frame to msg in arrival order.
// On error the partially built message is still returned in the Result.
func (r *Reconciler) Run(ctx context.Context, sessionID string, msg models.Message, body io.Reader) (Result, error) {
	st := &inFlight{
		sessionID: sessionID,
		result:    Result{Message: msg.Clone()},
		calls:     make(map[string]models.ToolInvocation),
	}
	st.text.WriteString(msg.Content)

	dec := stream.NewDecoder(stream.WithFlushTrailing(r.flushTrailing))

	done := make(chan struct{})
	defer close(done)
	chunks := readChunks(done, body, r.chunkSize)

	var idle <-chan time.Time
	var timer *time.Timer
	if r.idleTimeout > 0 {
		timer = time.NewTimer(r.idleTimeout)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			dec.Reset()
			return st.result, ctx.Err()

		case <-idle:
			dec.Reset()
			return st.result, apierrors.NewTimeoutError(fmt.Sprintf("no data received for %s", r.idleTimeout))

		case c := <-chunks:
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					r.applyAll(st, dec.Close())
					return st.result, nil
				}
				dec.Reset()
				if ctxErr := ctx.Err(); ctxErr != nil {
					return st.result, ctxErr
				}
				return st.result, apierrors.NewNetworkError("read stream", c.err)
			}

			r.applyAll(st, dec.Feed(c.data))

			if timer != nil {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(r.idleTimeout)
			}
		}
	}
}

func (r *Reconciler) applyAll(st *inFlight, frames []stream.Frame) {
	for _, f := range frames {
		r.apply(st, f)
	}
}

// apply is the event interpreter: one frame, one effect
func (r *Reconciler) apply(st *inFlight, f stream.Frame) {
	st.result.Frames++
	msg := &st.result.Message

	if st.result.Finished && f.Kind != stream.FrameUnrecognized {
		r.logger.Debug("frame after finish", "kind", f.Kind.String())
	}

	switch f.Kind {
	case stream.FrameTextDelta:
		st.text.WriteString(f.Delta)
		msg.Content = st.text.String()
		r.messages.UpdateMessage(st.sessionID, msg.ID, msg.Content)

	case stream.FrameToolCall:
		call := models.ToolInvocation{
			ToolCallID: f.ToolCallID,
			ToolName:   f.ToolName,
			Args:       f.Args,
		}
		st.calls[f.ToolCallID] = call
		st.result.ToolCalls = append(st.result.ToolCalls, call)
		r.logger.Debug("tool call",
			"tool", f.ToolName,
			"id", f.ToolCallID,
			"args", string(f.Args),
			"format", f.Format.String(),
		)

	case stream.FrameToolResult:
		inv := models.ToolInvocation{
			ToolCallID: f.ToolCallID,
			ToolName:   f.ToolName,
			Args:       f.Args,
			Result:     f.Result,
		}
		if call, ok := st.calls[f.ToolCallID]; ok {
			if inv.ToolName == "" {
				inv.ToolName = call.ToolName
			}
			if inv.Args == nil {
				inv.Args = call.Args
			}
		}
		msg.ToolInvocations = append(msg.ToolInvocations, inv)

		proj := tools.Project(inv.ToolName, inv.Result)
		if proj.HasSummary {
			st.text.Reset()
			st.text.WriteString(proj.Summary)
			msg.Content = proj.Summary
			r.messages.UpdateMessage(st.sessionID, msg.ID, msg.Content)
		}
		if proj.Panel != nil {
			r.panels.OpenPanel(*proj.Panel)
		}
		r.logger.Debug("tool result",
			"tool", inv.ToolName,
			"id", inv.ToolCallID,
			"summary", proj.HasSummary,
			"panel", proj.Panel != nil,
		)

	case stream.FrameFinish:
		st.result.Finished = true
		st.result.FinishReason = f.FinishReason

	case stream.FrameMalformed:
		st.result.Malformed++
		r.logger.Warn("skipping malformed stream line",
			"error", f.Err,
			"line", truncate(f.Raw, 200),
		)
	}
}

type chunk struct {
	data []byte
	err  error
}

// readChunks reads body on its own goroutine so the caller can select on
// cancellation and the idle timer. It exits once done is closed.
func readChunks(done <-chan struct{}, body io.Reader, size int) <-chan chunk {
	ch := make(chan chunk)
	go func() {
		for {
			buf := make([]byte, size)
			n, err := body.Read(buf)
			if n > 0 {
				select {
				case ch <- chunk{data: buf[:n]}:
				case <-done:
					return
				}
			}
			if err != nil {
				select {
				case ch <- chunk{err: err}:
				case <-done:
				}
				return
			}
		}
	}()
	return ch
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
