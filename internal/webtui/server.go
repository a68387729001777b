// Package webtui serves the terminal admin bar in a browser: each websocket session runs `quicklinks bar` in a PTY
// and xterm.js draws it.
package webtui

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

//go:embed templates/*.html static/*.css static/*.js
var assetsFS embed.FS

// XtermVersion pins the xterm.js build loaded by the terminal page.
const XtermVersion = "5.3.0"

type ServerConfig struct {
	Addr string

	// ServerURL is the quicklinks web server each bar session talks to.
	ServerURL string
	Login     string

	// Executable overrides os.Executable for the spawned bar process.
	Executable string
	Logger     *slog.Logger
}

type Server struct {
	cfg  ServerConfig
	tmpl *template.Template
	log  *slog.Logger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("webtui: missing addr")
	}
	u, err := url.Parse(strings.TrimSpace(cfg.ServerURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("webtui: server url must be absolute (e.g. http://127.0.0.1:8080)")
	}
	cfg.ServerURL = strings.TrimRight(u.String(), "/")
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, tmpl: tmpl, log: log}, nil
}

func (s *Server) Addr() string {
	return strings.TrimSpace(s.cfg.Addr)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/terminal", http.StatusFound)
	})
	mux.HandleFunc("GET /terminal", s.handleTerminal)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "text/javascript; charset=utf-8"))

	return mux
}

func (s *Server) handleStatic(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(b)
	}
}

type terminalVM struct {
	ServerURL    string
	Login        string
	XtermVersion string
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	vm := terminalVM{
		ServerURL:    s.cfg.ServerURL,
		Login:        strings.TrimSpace(s.cfg.Login),
		XtermVersion: XtermVersion,
	}
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, "terminal.html", vm); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// barArgs is the argv (after the executable) of one terminal bar session.
func (s *Server) barArgs() []string {
	args := []string{"bar", "--server", s.cfg.ServerURL}
	if login := strings.TrimSpace(s.cfg.Login); login != "" {
		args = append(args, "--login", login)
	}
	return args
}
