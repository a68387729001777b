package cli

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"quicklinks/internal/client"
	"quicklinks/internal/tui"
)

func newBarCmd(app *App) *cobra.Command {
	var server, login, screen string
	var front bool

	cmd := &cobra.Command{
		Use:   "bar",
		Short: "Interactive terminal admin bar against a running server",
		Long: strings.TrimSpace(`
Open both quick-links menus in the terminal. Type to filter the open menu, enter opens the
row in the browser, ctrl+p pins, ctrl+s and ctrl+t change status and type.

Against a server in dev auth mode pass --login to sign in first.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := tui.Run(cmd.Context(), tui.Options{
				BaseURL: server,
				Login:   login,
				Screen:  client.Screen{Hint: screen, Front: front, Query: url.Values{}},
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", envOr("QUICKLINKS_SERVER", "http://127.0.0.1:8080"), "Server base URL")
	cmd.Flags().StringVar(&login, "login", "", "Sign in as this user (dev auth mode)")
	cmd.Flags().StringVar(&screen, "screen", "", "Content type of the starting screen")
	cmd.Flags().BoolVar(&front, "front", false, "Start on a front-end page")
	return cmd
}
