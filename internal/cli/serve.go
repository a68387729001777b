package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"quicklinks/internal/config"
	"quicklinks/internal/listing"
	"quicklinks/internal/store"
	"quicklinks/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, baseURL, authMode, logLevel string
	var maxItems int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin bar (HTML, JSON, ajax and live updates)",
		Long: strings.TrimSpace(`
Serve a demo admin page with the quick-links bar.

Settings come from QUICKLINKS_* environment variables; flags win over the environment.
Auth mode "none" serves every request as --user. Auth mode "dev" shows a login form and
keeps the chosen user in a signed session cookie.
`),
		Example: strings.TrimSpace(`
quicklinks --dir ./data --user ann serve --addr 127.0.0.1:8080
QUICKLINKS_AUTH=dev quicklinks --dir ./data serve
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer()
			if err != nil {
				return writeErr(cmd, err)
			}
			flags := cmd.Flags()
			cfg.Dir = app.Dir
			if app.User != "" {
				cfg.User = app.User
			}
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if flags.Changed("auth") {
				cfg.AuthMode = authMode
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("max-items") {
				cfg.MaxItems = maxItems
			}
			if err := cfg.Normalize(); err != nil {
				return writeErr(cmd, err)
			}

			log := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := (store.Store{Dir: cfg.Dir}).Open(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:       cfg.Addr,
				Dir:        cfg.Dir,
				BaseURL:    cfg.BaseURL,
				AuthMode:   cfg.AuthMode,
				User:       cfg.User,
				Limits:     listing.Limits{MaxItems: cfg.MaxItems, Overfetch: cfg.Overfetch},
				NonceTTL:   cfg.NonceTTL,
				SessionTTL: cfg.SessionTTL,
				Logger:     log,
			}, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := srv.ListenAndServe(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from QUICKLINKS_ADDR or 127.0.0.1:8080)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Prefix for generated links (default: request host)")
	cmd.Flags().StringVar(&authMode, "auth", "", "Auth mode (none|dev)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "Rows per menu")
	return cmd
}
