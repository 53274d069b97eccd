package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/campuschat/internal/chat"
	"github.com/diogo/campuschat/internal/history"
	"github.com/diogo/campuschat/internal/render"
	"github.com/diogo/campuschat/internal/store"
	"github.com/diogo/campuschat/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	var resume string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the marketplace assistant.

Product searches open a side panel with the matching listings; press
Ctrl+P to toggle it. Esc stops a reply in progress, and 'exit', 'quit'
or Ctrl+C ends the session.

Use --resume to continue a saved conversation.

` + history.ListAliases(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps.withDefaults(), resume)
		},
	}
	cmd.Flags().StringVarP(&resume, "resume", "r", "", "Resume a saved conversation")
	return cmd
}

func runChat(deps *Dependencies, resume string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	hs := openHistory()
	st := store.New()

	var extra []chat.SessionOption
	var restored *history.Conversation
	if resume != "" {
		if hs == nil {
			return fmt.Errorf("cannot resume: history is unavailable")
		}
		conv, err := history.NewResolver(hs).ResolveWithInfo(resume)
		if err != nil {
			return err
		}
		restored = conv
		extra = append(extra, chat.WithSessionID(conv.ID))
	}

	sess := newSession(cfg, client, st, hs, extra...)
	if restored != nil {
		sess.Restore(restored.Messages)
	}

	tui.UpdateTheme(render.ThemeOrDefault(cfg.TUITheme))
	return deps.TUI.RunChat(sess, st, cfg.Endpoint, render.OptionsFromConfig(cfg.Markdown))
}
