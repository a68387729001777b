package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quicklinks/internal/config"
	"quicklinks/internal/webtui"
)

func newWebBarCmd(app *App) *cobra.Command {
	var addr, server, login, logLevel string

	cmd := &cobra.Command{
		Use:   "webbar",
		Short: "Run the terminal bar in a browser (PTY + WebSocket)",
		Long: strings.TrimSpace(`
Serve a browser terminal that runs ` + "`quicklinks bar`" + ` for every connected tab.

Each tab starts one bar process on this machine. There is no auth in front of the terminal, so
bind it to localhost.
`),
		Example: strings.TrimSpace(`
  quicklinks webbar --server http://127.0.0.1:8080 --login ann
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:      strings.TrimSpace(addr),
				ServerURL: server,
				Login:     login,
				Logger:    config.NewLogger(cmd.ErrOrStderr(), logLevel),
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := srv.Addr()
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      listenAddr,
					"server":    server,
					"login":     login,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{"open http://" + listenAddr},
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hs := &http.Server{Addr: listenAddr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hs.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(cmd.ErrOrStderr(), "quicklinks webbar running at http://%s (server=%s)\n", listenAddr, server)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("QUICKLINKS_WEBBAR_ADDR", "127.0.0.1:3334"), "Bind address (host:port or :port)")
	cmd.Flags().StringVar(&server, "server", envOr("QUICKLINKS_SERVER", "http://127.0.0.1:8080"), "Server base URL the bar talks to")
	cmd.Flags().StringVar(&login, "login", "", "Sign each session in as this user (dev auth mode)")
	cmd.Flags().StringVar(&logLevel, "log-level", envOr("QUICKLINKS_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	return cmd
}
