// Package web serves the quick-links admin bar: the demo admin page, menu fragments, the live menu stream and the
// AJAX mutation endpoint.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"quicklinks/internal/listing"
	"quicklinks/internal/model"
	"quicklinks/internal/mutate"
	"quicklinks/internal/pins"
	"quicklinks/internal/store"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

const (
	AuthNone = "none"
	AuthDev  = "dev"

	sessionCookieName = "quicklinks_session"
	barSelector       = "#quicklinks-bar"
)

type ServerConfig struct {
	Addr string
	Dir  string

	// BaseURL prefixes generated links. Empty uses the request's scheme and host.
	BaseURL string

	AuthMode string // none|dev
	User     string // fixed login when AuthMode is none

	Limits     listing.Limits
	NonceTTL   time.Duration
	SessionTTL time.Duration

	Logger *slog.Logger
}

type Server struct {
	cfg    ServerConfig
	db     *store.DB
	tmpl   *template.Template
	secret []byte
	hubs   *userHubs
	log    *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

func NewServer(cfg ServerConfig, db *store.DB) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	cfg.User = strings.TrimSpace(cfg.User)
	if db == nil {
		return nil, errors.New("web: db is nil")
	}
	if cfg.Dir == "" {
		return nil, errors.New("web: dir is empty")
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = AuthNone
	}
	if cfg.AuthMode != AuthNone && cfg.AuthMode != AuthDev {
		return nil, errors.New("web: invalid auth mode (expected none|dev)")
	}
	if cfg.AuthMode == AuthNone && cfg.User == "" {
		return nil, errors.New("web: auth mode none needs a user")
	}
	if cfg.NonceTTL <= 0 {
		cfg.NonceTTL = 24 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	tmpl, err := template.New("base").ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	secret, err := loadOrInitSecretKey(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:    cfg,
		db:     db,
		tmpl:   tmpl,
		secret: secret,
		hubs:   newUserHubs(),
		log:    cfg.Logger,
		now:    time.Now,
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/admin-bar.js", s.handleStatic("static/admin-bar.js", "application/javascript; charset=utf-8"))
	mux.HandleFunc("GET /static/admin-bar.css", s.handleStatic("static/admin-bar.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /admin-bar", s.handleBar)
	mux.HandleFunc("GET /admin-bar.json", s.handleBarJSON)
	mux.HandleFunc("GET /admin-bar/stream", s.handleBarStream)
	mux.HandleFunc("POST /ajax", s.handleAjax)
	mux.HandleFunc("POST /login", s.handleLoginPost)
	mux.HandleFunc("POST /logout", s.handleLogoutPost)
	mux.HandleFunc("GET /help", s.handleHelp)
	mux.HandleFunc("GET /help/{topic}", s.handleHelp)
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("quicklinks: listening", "addr", s.cfg.Addr, "auth", s.cfg.AuthMode)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(name)
		if err != nil || len(b) == 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// viewerForRequest resolves the signed-in user: the fixed user in auth mode none, the session cookie in dev mode.
func (s *Server) viewerForRequest(r *http.Request) (model.User, bool) {
	login := s.cfg.User
	if s.cfg.AuthMode == AuthDev {
		c, err := r.Cookie(sessionCookieName)
		if err != nil {
			return model.User{}, false
		}
		sp, err := verifyToken(s.secret, c.Value, s.now())
		if err != nil || sp.Typ != tokenTypeSession {
			return model.User{}, false
		}
		login = sp.Sub
	}
	u, err := s.db.UserByLogin(r.Context(), login)
	if err != nil {
		if !store.IsNotFound(err) {
			s.log.Warn("web: resolve viewer", "login", login, "err", err)
		}
		return model.User{}, false
	}
	return u, true
}

func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.BaseURL != "" {
		return s.cfg.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) builder(r *http.Request) *listing.Builder {
	return &listing.Builder{
		Items:   s.db,
		Types:   s.db,
		Pins:    pins.MetaRepository{Meta: s.db},
		BaseURL: s.baseURL(r),
		Limits:  s.cfg.Limits,
		Logger:  s.log,
	}
}

// screenContext maps the page query to the listing context. The demo page is an admin screen unless front=1.
func screenContext(q url.Values) listing.Context {
	return listing.Context{
		Query:      q,
		ScreenHint: strings.TrimSpace(q.Get("screen")),
		Admin:      q.Get("front") != "1",
	}
}

func (s *Server) menus(r *http.Request, u model.User, q url.Values) []listing.Menu {
	return s.builder(r).BuildAll(r.Context(), listing.NewViewer(u), screenContext(q))
}

type nonceSet struct {
	Pin    string `json:"pin"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

type clientConfig struct {
	AjaxURL   string   `json:"ajaxUrl"`
	StreamURL string   `json:"streamUrl"`
	Nonces    nonceSet `json:"nonces"`
}

// clientConfigFor issues one fresh nonce per operation for this render.
func (s *Server) clientConfigFor(u model.User, q url.Values) (clientConfig, error) {
	issue := func(op string) (string, error) {
		return newActionNonce(s.secret, u.ID, mutate.NonceActions[op], s.cfg.NonceTTL, s.now())
	}
	var cfg clientConfig
	var err error
	if cfg.Nonces.Pin, err = issue(mutate.OpTogglePin); err != nil {
		return clientConfig{}, err
	}
	if cfg.Nonces.Status, err = issue(mutate.OpUpdateStatus); err != nil {
		return clientConfig{}, err
	}
	if cfg.Nonces.Type, err = issue(mutate.OpUpdateType); err != nil {
		return clientConfig{}, err
	}
	cfg.AjaxURL = "/ajax"
	cfg.StreamURL = "/admin-bar/stream"
	if enc := q.Encode(); enc != "" {
		cfg.StreamURL += "?" + enc
	}
	return cfg, nil
}

type pageVM struct {
	User     model.User
	Users    []model.User
	AuthMode string
	Screen   listing.Context
	Bar      template.HTML
	Config   clientConfig
}

type loginVM struct {
	Users []model.User
	Error string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	u, ok := s.viewerForRequest(r)
	if !ok {
		if s.cfg.AuthMode != AuthDev {
			http.Error(w, "unknown user "+s.cfg.User, http.StatusInternalServerError)
			return
		}
		s.renderLogin(w, r, "")
		return
	}
	q := r.URL.Query()
	bar, err := listing.RenderString(s.menus(r, u, q))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cfg, err := s.clientConfigFor(u, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	vm := pageVM{
		User:     u,
		AuthMode: s.cfg.AuthMode,
		Screen:   screenContext(q),
		Bar:      template.HTML(bar),
		Config:   cfg,
	}
	if s.cfg.AuthMode == AuthDev {
		vm.Users, _ = s.db.Users(r.Context())
	}
	s.writeHTMLTemplate(w, http.StatusOK, "page.html", vm)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, msg string) {
	users, err := s.db.Users(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	code := http.StatusOK
	if msg != "" {
		code = http.StatusUnauthorized
	}
	s.writeHTMLTemplate(w, code, "login.html", loginVM{Users: users, Error: msg})
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, code int, name string, data any) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, b.String())
}

func (s *Server) handleBar(w http.ResponseWriter, r *http.Request) {
	u, ok := s.viewerForRequest(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusForbidden)
		return
	}
	html, err := listing.RenderString(s.menus(r, u, r.URL.Query()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

type barJSON struct {
	User   model.User     `json:"user"`
	Menus  []listing.Menu `json:"menus"`
	Config clientConfig   `json:"config"`
}

func (s *Server) handleBarJSON(w http.ResponseWriter, r *http.Request) {
	u, ok := s.viewerForRequest(r)
	if !ok {
		writeJSONFailure(w, http.StatusForbidden, "Not signed in.")
		return
	}
	q := r.URL.Query()
	cfg, err := s.clientConfigFor(u, q)
	if err != nil {
		writeJSONFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, barJSON{User: u, Menus: s.menus(r, u, q), Config: cfg})
}

// handleBarStream patches #quicklinks-bar with a fresh render on connect and after every mutation by this viewer.
func (s *Server) handleBarStream(w http.ResponseWriter, r *http.Request) {
	u, ok := s.viewerForRequest(r)
	if !ok {
		http.Error(w, "not signed in", http.StatusForbidden)
		return
	}
	q := r.URL.Query()
	render := func() (string, error) {
		return listing.RenderString(s.menus(r, u, q))
	}

	ch, cancel := s.hubs.hubFor(u.ID).subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	patch := func() {
		html, err := render()
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		_ = sse.PatchElements(html, datastar.WithSelector(barSelector), datastar.WithMode(datastar.ElementPatchModeOuter))
	}
	patch()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			patch()
		}
	}
}

func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthMode != AuthDev {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	login := strings.TrimSpace(r.Form.Get("login"))
	if login == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	u, err := s.db.UserByLogin(r.Context(), login)
	if err != nil {
		if store.IsNotFound(err) {
			s.renderLogin(w, r, "unknown user")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sess, err := newSessionToken(s.secret, u.Login, s.cfg.SessionTTL, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Info("web: signed in", "user", u.Login)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogoutPost(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthMode != AuthDev {
		http.NotFound(w, r)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
