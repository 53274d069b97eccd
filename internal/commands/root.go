// Package commands provides CLI commands for campuschat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/campuschat/internal/config"
	"github.com/diogo/campuschat/internal/logging"
)

var (
	// Global flags
	endpointFlag  string
	verboseFlag   bool
	logLevelFlag  string
	logFormatFlag string
	logFileFlag   string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"

	closeLog = func() error { return nil }
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "campuschat [prompt]",
	Short: "Chat with the campus marketplace shopping assistant",
	Long: `campuschat talks to the campus marketplace AI assistant from the terminal.
Replies stream in as they are generated, and product searches the assistant
runs are shown as a table of listings.

Examples:
  campuschat chat                          Start interactive chat
  campuschat "used calculus textbook"      Ask a single question
  campuschat -f wishlist.md                Read prompt from file
  cat wishlist.md | campuschat             Read prompt from stdin
  campuschat "desk lamp" -o answer.md      Save reply to file
  campuschat login --browser firefox       Import the storefront session
  campuschat history list                  Show saved conversations`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "campuschat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		prompt, ok, err := readPrompt(args, askOpts.file, os.Stdin)
		if err != nil {
			return err
		}
		if !ok {
			return cmd.Help()
		}
		return runAsk(cmd.Context(), prompt, askOpts)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&endpointFlag, "endpoint", "e", "", "Chat endpoint URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Write logs to a file instead of stderr")
	bindAskFlags(rootCmd)
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	deps := NewDependencies()
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(NewChatCmd(deps))
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(NewConfigCmd(deps))
	rootCmd.AddCommand(importCookieCmd)
	rootCmd.AddCommand(NewLoginCmd(deps))
}

// setupLogging installs the default logger from config and flags
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		// A broken config should not stop `config set` from fixing it
		cfg = config.DefaultConfig()
	}

	closer, err := logging.Setup(loggingOptions(cfg))
	if err != nil {
		return err
	}
	closeLog = closer
	return nil
}

// loggingOptions merges the config with the global flags
func loggingOptions(cfg config.Config) logging.Options {
	opts := logging.Options{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Output:   os.Stderr,
		FilePath: logFileFlag,
	}
	if cfg.Verbose || verboseFlag {
		opts.Level = "debug"
	}
	if logLevelFlag != "" {
		opts.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		opts.Format = logFormatFlag
	}
	return opts
}

// loadConfig loads the config and applies the --endpoint flag
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if endpointFlag != "" {
		cfg.Endpoint = endpointFlag
	}
	return cfg, nil
}

// readPrompt picks the prompt from a file, piped stdin or the positional
// argument, in that order. ok is false when there is no input at all.
func readPrompt(args []string, file string, stdin *os.File) (string, bool, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if stdin != nil {
		if stat, err := stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return "", false, fmt.Errorf("failed to read stdin: %w", err)
			}
			if len(data) > 0 {
				return string(data), true, nil
			}
		}
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}
