package cli

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quicklinks/internal/listing"
)

func newMenuCmd(app *App) *cobra.Command {
	var baseURL, screen, postType string
	var post int64
	var front bool

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the menus --user would see on a screen",
		Example: strings.TrimSpace(`
# Dashboard
quicklinks --dir ./data --user ann menu

# Editing item 2 (the related menu follows its type)
quicklinks --dir ./data --user ed menu --post 2

# A type list screen
quicklinks --dir ./data --user ed menu --post-type product
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			u, err := currentUser(ctx, app, db)
			if err != nil {
				return writeErr(cmd, err)
			}

			q := url.Values{}
			if post > 0 {
				q.Set("post", strconv.FormatInt(post, 10))
				q.Set("action", "edit")
			}
			if postType != "" {
				q.Set("post_type", postType)
			}
			c := listing.Context{Query: q, ScreenHint: screen, Admin: !front}
			menus := newBuilder(db, baseURL).BuildAll(ctx, listing.NewViewer(u), c)
			return writeOut(cmd, app, map[string]any{"data": menus})
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost", "Prefix for generated links")
	cmd.Flags().Int64Var(&post, "post", 0, "Item id whose edit screen is shown")
	cmd.Flags().StringVar(&postType, "post-type", "", "Explicit post_type parameter")
	cmd.Flags().StringVar(&screen, "screen", "", "Content type reported by the screen")
	cmd.Flags().BoolVar(&front, "front", false, "Render for a front-end page instead of an admin screen")
	return cmd
}
