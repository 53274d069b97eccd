package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/campuschat/internal/config"
	"github.com/diogo/campuschat/internal/models"
	"github.com/diogo/campuschat/internal/render"
	"github.com/diogo/campuschat/internal/store"
)

// askOptions are the flags shared by the root command and `ask`
type askOptions struct {
	file     string
	output   string
	raw      bool
	markdown bool
	noPanel  bool
}

var askOpts askOptions

// Styles for the decorated reply
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

func bindAskFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&askOpts.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().StringVarP(&askOpts.output, "output", "o", "", "Save reply to file")
	cmd.Flags().BoolVar(&askOpts.raw, "raw", false, "Print only the reply text, without decoration")
	cmd.Flags().BoolVarP(&askOpts.markdown, "markdown", "m", false, "Wait for the full reply and render it as markdown")
	cmd.Flags().BoolVar(&askOpts.noPanel, "no-panel", false, "Do not print the product table")
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Ask the assistant a single question",
		Long: `Send one prompt and stream the reply to stdout as it arrives.

When the assistant searches the marketplace, the matching listings are
printed as a table after the reply. Press Ctrl+C to stop a reply early;
whatever arrived so far is kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, ok, err := readPrompt(args, askOpts.file, os.Stdin)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no prompt given: pass it as an argument, with -f, or on stdin")
			}
			return runAsk(cmd.Context(), prompt, askOpts)
		},
	}
	bindAskFlags(cmd)
	return cmd
}

// runAsk sends one prompt and prints the reply
func runAsk(ctx context.Context, prompt string, opts askOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	st := store.New()
	sess := newSession(cfg, client, st, openHistory())

	decorated := !opts.raw && isTerminal(os.Stdout)
	buffered := opts.output != "" || (opts.markdown && decorated)

	spin := newSpinner(os.Stderr, "Asking the assistant")
	if !opts.raw && isTerminal(os.Stderr) {
		spin.start()
	}
	defer spin.halt()

	if buffered {
		unsubscribe := st.Subscribe(progressListener(sess.ID(), spin))
		defer unsubscribe()
	} else {
		printer := newAnswerPrinter(os.Stdout, sess.ID(), spin.halt)
		unsubscribe := st.Subscribe(printer.handle)
		defer unsubscribe()
		defer printer.finish()
	}

	reply, err := sess.Send(ctx, prompt)
	spin.halt()
	if err != nil {
		if !opts.raw {
			if errors.Is(err, context.Canceled) && reply.Content != "" {
				fmt.Fprintln(os.Stderr, dimStyle().Render("\nReply interrupted."))
			} else {
				fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Request failed"))
			}
		}
		return err
	}

	switch {
	case opts.output != "":
		if err := os.WriteFile(opts.output, []byte(reply.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !opts.raw {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", opts.output)))
		}
	case buffered:
		printRendered(os.Stdout, reply.Content, cfg.Markdown)
	}

	if panel := st.Panel(); panel.Open() && !opts.noPanel && opts.output == "" {
		printPanel(os.Stdout, panel, cfg, decorated)
	}

	if cfg.CopyToClipboard && !opts.raw {
		copyToClipboard(reply.Content)
	}
	return nil
}

// progressListener keeps the spinner message in step with the reply size
func progressListener(sessionID string, spin *spinner) func(store.Event) {
	return func(ev store.Event) {
		if ev.Kind != store.EventMessageUpdated || ev.SessionID != sessionID {
			return
		}
		spin.setMessage(fmt.Sprintf("Receiving reply (%d chars)", len(ev.Message.Content)))
	}
}

// answerPrinter writes assistant text to w as it streams in
type answerPrinter struct {
	w         io.Writer
	sessionID string
	onFirst   func()

	mu      sync.Mutex
	printed string
	started bool
}

func newAnswerPrinter(w io.Writer, sessionID string, onFirst func()) *answerPrinter {
	return &answerPrinter{w: w, sessionID: sessionID, onFirst: onFirst}
}

func (p *answerPrinter) handle(ev store.Event) {
	if ev.SessionID != p.sessionID || ev.Message.Role != models.RoleAssistant {
		return
	}
	if ev.Kind != store.EventMessageUpdated && ev.Kind != store.EventMessageAdded {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	content := ev.Message.Content
	if content == p.printed {
		return
	}
	if !p.started {
		p.started = true
		if p.onFirst != nil {
			p.onFirst()
		}
	}

	if strings.HasPrefix(content, p.printed) {
		fmt.Fprint(p.w, content[len(p.printed):])
	} else {
		// A tool summary replaced the text already shown
		fmt.Fprint(p.w, "\n\n"+content)
	}
	p.printed = content
}

// finish terminates the last line of output
func (p *answerPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed != "" && !strings.HasSuffix(p.printed, "\n") {
		fmt.Fprintln(p.w)
	}
}

// printRendered shows the reply as markdown inside the assistant bubble
func printRendered(w io.Writer, text string, md config.MarkdownConfig) {
	bubbleWidth := min(max(getTerminalWidth()-4, 40), 120)
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(w, assistantLabelStyle.Render("✦ Campus Assistant"))

	rendered, err := render.Markdown(text, render.OptionsFromConfig(md).WithWidth(contentWidth))
	if err != nil {
		rendered = text
	}
	rendered = strings.TrimRight(rendered, "\n")
	fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}

// printPanel prints the product results the assistant found
func printPanel(w io.Writer, panel store.PanelState, cfg config.Config, decorated bool) {
	if panel.Active != models.PanelProductResults {
		return
	}
	if !decorated {
		fmt.Fprintln(w)
		fmt.Fprint(w, render.PlainProductTable(panel.Data))
		return
	}
	theme := render.ThemeOrDefault(cfg.TUITheme)
	fmt.Fprintln(w)
	fmt.Fprintln(w, render.ProductTable(panel.Data, theme, min(getTerminalWidth(), 120)))
}

func copyToClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
			fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		return
	}
	fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
}
