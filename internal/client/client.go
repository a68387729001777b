// Package client talks to a running quicklinks server: it fetches the rendered menus with their nonces and posts the
// three admin bar mutations to the ajax endpoint.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"quicklinks/internal/listing"
	"quicklinks/internal/model"
)

const (
	actionTogglePin    = "quicklinks_toggle_pin"
	actionUpdateStatus = "quicklinks_update_status"
	actionUpdateType   = "quicklinks_update_post_type"
)

var ErrNoNonce = errors.New("client: no nonce; fetch the bar first")

// RemoteError is a failure reported by the server in the ajax envelope.
type RemoteError struct {
	Status  int
	Message string
}

func (e RemoteError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
}

func (e RemoteError) RejectionMessage() string { return e.Message }

type Nonces struct {
	Pin    string `json:"pin"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

type Bar struct {
	User   model.User     `json:"user"`
	Menus  []listing.Menu `json:"menus"`
	Config struct {
		AjaxURL   string `json:"ajaxUrl"`
		StreamURL string `json:"streamUrl"`
		Nonces    Nonces `json:"nonces"`
	} `json:"config"`
}

// Screen describes the page the bar is drawn for.
type Screen struct {
	Hint  string
	Front bool
	Query url.Values
}

func (s Screen) values() url.Values {
	q := url.Values{}
	for k, vs := range s.Query {
		q[k] = append([]string(nil), vs...)
	}
	if s.Hint != "" {
		q.Set("screen", s.Hint)
	}
	if s.Front {
		q.Set("front", "1")
	}
	return q
}

type Client struct {
	base *url.URL
	http *http.Client

	mu     sync.Mutex
	nonces Nonces
}

// New returns a client for the server at baseURL. A nil httpClient gets a fresh client with a cookie jar so dev-mode
// sessions persist across calls.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host required", baseURL)
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar}
	}
	return &Client{base: u, http: httpClient}, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	} else {
		u.RawQuery = ""
	}
	return u.String()
}

// Login signs in against a server running in dev auth mode.
func (c *Client) Login(ctx context.Context, login string) error {
	form := url.Values{"login": {login}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/login", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login returned %s", resp.Status)
	}
	return nil
}

// FetchBar loads the menus for a screen and keeps the returned nonces for later mutations.
func (c *Client) FetchBar(ctx context.Context, s Screen) (Bar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/admin-bar.json", s.values()), nil)
	if err != nil {
		return Bar{}, fmt.Errorf("build bar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Bar{}, fmt.Errorf("bar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Bar{}, decodeFailure(resp)
	}
	var bar Bar
	if err := json.NewDecoder(resp.Body).Decode(&bar); err != nil {
		return Bar{}, fmt.Errorf("decode bar response: %w", err)
	}
	c.mu.Lock()
	c.nonces = bar.Config.Nonces
	c.mu.Unlock()
	return bar, nil
}

func (c *Client) SetNonces(n Nonces) {
	c.mu.Lock()
	c.nonces = n
	c.mu.Unlock()
}

func (c *Client) nonceFor(action string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch action {
	case actionTogglePin:
		return c.nonces.Pin
	case actionUpdateStatus:
		return c.nonces.Status
	default:
		return c.nonces.Type
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) post(ctx context.Context, action string, id int64, extra url.Values, out any) error {
	nonce := c.nonceFor(action)
	if nonce == "" {
		return ErrNoNonce
	}
	form := url.Values{
		"action":  {action},
		"post_id": {strconv.FormatInt(id, 10)},
		"nonce":   {nonce},
	}
	for k, vs := range extra {
		form[k] = vs
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/ajax", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeFailure(resp)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s response: %w", action, err)
	}
	if !env.Success {
		return RemoteError{Status: resp.StatusCode, Message: failureMessage(env.Data)}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", action, err)
		}
	}
	return nil
}

// decodeFailure turns a non-200 response into a RemoteError when the body is the ajax envelope, or a plain error
// otherwise.
func decodeFailure(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && !env.Success && len(env.Data) > 0 {
		return RemoteError{Status: resp.StatusCode, Message: failureMessage(env.Data)}
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func failureMessage(data json.RawMessage) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &m); err == nil && m.Message != "" {
		return m.Message
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return ""
}

func (c *Client) TogglePin(ctx context.Context, id int64) (bool, error) {
	var out struct {
		State string `json:"state"`
	}
	if err := c.post(ctx, actionTogglePin, id, nil, &out); err != nil {
		return false, err
	}
	return out.State == "pinned", nil
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	return c.post(ctx, actionUpdateStatus, id, url.Values{"status": {string(status)}}, nil)
}

func (c *Client) UpdateType(ctx context.Context, id int64, typ string) error {
	return c.post(ctx, actionUpdateType, id, url.Values{"post_type": {typ}}, nil)
}
