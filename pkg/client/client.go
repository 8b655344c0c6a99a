// Package client talks to the salesdesk sales API on behalf of the form
// layer: it carries the session's bearer token, refreshes it once on 401 and
// tears the session down when that refresh fails.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000/api/v1/sales"

	tokenPath   = "/api/token/"
	refreshPath = "/api/token/refresh/"
	logoutPath  = "/api/logout/"
)

// ErrSessionExpired is returned once the refresh token was rejected and the
// session has been torn down.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

type Option func(*Client)

// WithBaseURL points the client at another sales API root.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithOnLogout registers the hook run after a failed refresh, typically a
// redirect to the login screen.
func WithOnLogout(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

type Client struct {
	baseURL  string
	http     *http.Client
	session  *Session
	log      *zap.Logger
	onLogout func()

	refreshMu sync.Mutex
}

func New(session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session { return c.session }

// hostURL resolves an absolute path on the API host.
func (c *Client) hostURL(path string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return path
	}
	u.Path = path
	u.RawQuery = ""
	return u.String()
}

func (c *Client) salesURL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// send performs one request and decodes the envelope.
func (c *Client) send(ctx context.Context, method, target string, body []byte, token string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = "request failed: " + http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("invalid response body: %w", decodeErr)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// do sends an authenticated request to target. A 401 triggers one refresh
// and one retry; if either fails the session is torn down.
func (c *Client) do(ctx context.Context, method, target string, in, out interface{}) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = b
	}

	access, _ := c.session.Tokens()
	err := c.send(ctx, method, target, body, access, out)
	if !isUnauthorized(err) {
		return err
	}

	if err := c.refresh(ctx, access); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("token refresh failed", zap.Error(err))
		return c.expire()
	}

	access, _ = c.session.Tokens()
	err = c.send(ctx, method, target, body, access, out)
	if isUnauthorized(err) {
		return c.expire()
	}
	return err
}

func (c *Client) expire() error {
	if err := c.session.Teardown(); err != nil {
		c.log.Error("failed to clear session", zap.Error(err))
	}
	if c.onLogout != nil {
		c.onLogout()
	}
	return ErrSessionExpired
}

// refresh rotates the tokens unless another caller already replaced stale.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.session.Tokens()
	if access != stale && access != "" {
		return nil
	}
	if refresh == "" {
		return errors.New("no refresh token")
	}

	body, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return err
	}
	var pair TokenPair
	if err := c.send(ctx, http.MethodPost, c.hostURL(refreshPath), body, "", &pair); err != nil {
		return err
	}
	if pair.Access == "" {
		return errors.New("refresh response carried no access token")
	}
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}
	c.log.Debug("access token refreshed")
	return c.session.SetTokens(pair.Access, pair.Refresh)
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for tokens and stores them in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	var pair TokenPair
	if err := c.send(ctx, http.MethodPost, c.hostURL(tokenPath), body, "", &pair); err != nil {
		return err
	}
	return c.session.SetTokens(pair.Access, pair.Refresh)
}

// Logout revokes the refresh token and tears the session down. The session
// is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh := c.session.Tokens()
	var callErr error
	if refresh != "" {
		body, err := json.Marshal(map[string]string{"refresh": refresh})
		if err != nil {
			return err
		}
		callErr = c.send(ctx, http.MethodPost, c.hostURL(logoutPath), body, "", nil)
	}
	if err := c.session.Teardown(); err != nil {
		return err
	}
	return callErr
}
