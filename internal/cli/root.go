package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quicklinks/internal/format"
	"quicklinks/internal/listing"
	"quicklinks/internal/model"
	"quicklinks/internal/pins"
	"quicklinks/internal/store"
)

type App struct {
	Dir        string
	User       string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "quicklinks",
		Short:        "Recently edited and pinned quick links for the admin bar",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Load the demo content and serve the bar
  quicklinks --dir ./data seed
  quicklinks --dir ./data --user ann serve

  # Print the menus a user would see on a page edit screen
  quicklinks --dir ./data --user ed menu --post 2

  # Drive the bar from a terminal
  quicklinks bar --server http://127.0.0.1:8080
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("QUICKLINKS_DIR", ""), "Path to the data dir (sqlite store + server secret)")
	cmd.PersistentFlags().StringVar(&app.User, "user", envOr("QUICKLINKS_USER", ""), "User login the command acts as")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("QUICKLINKS_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newMenuCmd(app))
	cmd.AddCommand(newPinsCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newTypeCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newBarCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWebBarCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func resolveDir(app *App) (string, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		return "", errors.New("missing --dir (or QUICKLINKS_DIR)")
	}
	return dir, nil
}

func openDB(ctx context.Context, app *App) (*store.DB, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	return (store.Store{Dir: dir}).Open(ctx)
}

// currentUser resolves --user against the store.
func currentUser(ctx context.Context, app *App, db *store.DB) (model.User, error) {
	login := strings.TrimSpace(app.User)
	if login == "" {
		return model.User{}, errMissingUser
	}
	u, err := db.UserByLogin(ctx, login)
	if err != nil {
		if store.IsNotFound(err) {
			return model.User{}, unknownUser(login)
		}
		return model.User{}, err
	}
	return u, nil
}

func pinRepo(db *store.DB) pins.MetaRepository {
	return pins.MetaRepository{Meta: db}
}

func newBuilder(db *store.DB, baseURL string) *listing.Builder {
	return &listing.Builder{
		Items:   db,
		Types:   db,
		Pins:    pinRepo(db),
		BaseURL: baseURL,
	}
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
