package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/campuschat/internal/config"
	"github.com/diogo/campuschat/internal/models"
)

var importCookieCmd = &cobra.Command{
	Use:     "import-cookie <path>",
	Aliases: []string{"import-cookies"},
	Short:   "Import the storefront session cookie from a file",
	Long: `Import the storefront session cookie from a JSON file.

The file should contain either:
1. A list of objects: [{"name": "` + models.SessionCookieName + `", "value": "..."}]
2. A simple dictionary: {"` + models.SessionCookieName + `": "..."}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImportCookie(cmd, args[0])
	},
}

func runImportCookie(cmd *cobra.Command, sourcePath string) error {
	if err := config.ImportCookies(sourcePath); err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}

	cookiesPath, _ := config.GetCookiesPath()
	fmt.Fprintf(cmd.OutOrStdout(), "Session cookie imported to %s\n", cookiesPath)
	return nil
}
