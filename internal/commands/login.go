package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/campuschat/internal/browser"
	"github.com/diogo/campuschat/internal/config"
)

const loginTimeout = 30 * time.Second

// NewLoginCmd creates the command that imports the session cookie from a browser
func NewLoginCmd(deps *Dependencies) *cobra.Command {
	var browserName string
	var list bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Import the storefront session from your browser",
		Long: `Read the storefront session cookie from a local browser profile and
save it to ~/.campuschat/cookies.json.

Sign in to the marketplace in your browser first. Supported browsers:
` + supportedBrowserList() + `. Use "auto" to try each one in turn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if list {
				return runListBrowsers(ctx, cmd)
			}
			return runLogin(ctx, cmd, deps.withDefaults(), browserName)
		},
	}
	cmd.Flags().StringVarP(&browserName, "browser", "b", "auto", "Browser to read the cookie from")
	cmd.Flags().BoolVar(&list, "list", false, "List browsers with a readable cookie store")
	return cmd
}

func runLogin(ctx context.Context, cmd *cobra.Command, deps *Dependencies, browserName string) error {
	target, err := browser.ParseBrowser(browserName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	domain, err := browser.CookieDomain(cfg.Endpoint)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	result, err := deps.ExtractCookie(ctx, target, domain)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := config.SaveCookies(result.Cookies); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in with the session from %s\n", result.BrowserName)
	return nil
}

func runListBrowsers(ctx context.Context, cmd *cobra.Command) error {
	names := browser.ListAvailableBrowsers(ctx)
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No browser cookie stores found.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func supportedBrowserList() string {
	names := make([]string, 0, len(browser.AllSupportedBrowsers()))
	for _, b := range browser.AllSupportedBrowsers() {
		names = append(names, b.String())
	}
	return strings.Join(names, ", ")
}
