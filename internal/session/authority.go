package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/atelier/internal/domain"
	"golang.org/x/oauth2"
)

const defaultTimeout = 30 * time.Second

// TokenStore persists the session between runs (the config file)
type TokenStore interface {
	SaveSession(creds domain.Credentials) error
	ClearSession() error
}

// Listener is told when the session starts or ends
type Listener func(authenticated bool)

// Authority owns the bearer credential of the signed-in user.
//
// It is the only component that attaches the credential to requests and the
// only one that decides a session is over: a 401 on any authorized request
// ends the session and notifies listeners.
type Authority struct {
	baseURL string
	store   TokenStore
	base    http.RoundTripper
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.RWMutex
	creds     domain.Credentials
	listeners []Listener
}

// Option configures an Authority
type Option func(*Authority)

// WithTransport sets the round tripper under the bearer transport
func WithTransport(rt http.RoundTripper) Option {
	return func(a *Authority) { a.base = rt }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(a *Authority) { a.timeout = d }
}

// New creates an Authority for the API at baseURL, resuming creds when they
// carry a token. store may be nil (nothing is persisted).
func New(baseURL string, creds domain.Credentials, store TokenStore, logger *slog.Logger, opts ...Option) *Authority {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Authority{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		base:    http.DefaultTransport,
		timeout: defaultTimeout,
		logger:  logger,
		creds:   creds,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsAuthenticated reports whether a bearer credential is held
func (a *Authority) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.Token != ""
}

// User returns the signed-in user
func (a *Authority) User() (domain.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.User, a.creds.Token != ""
}

// Token returns the current bearer credential, empty when signed out
func (a *Authority) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.Token
}

// Subscribe registers l for session start/end notifications
func (a *Authority) Subscribe(l Listener) {
	a.mu.Lock()
	a.listeners = append(a.listeners, l)
	a.mu.Unlock()
}

// AuthorizedRequest sends req with the bearer credential attached.
//
// Without a session it fails with domain.ErrUnauthenticated. Transport
// failures wrap domain.ErrNetwork. A 401 answer ends the session and returns
// domain.ErrSessionExpired; the response body is already closed in that case.
func (a *Authority) AuthorizedRequest(req *http.Request) (*http.Response, error) {
	token := a.Token()
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	resp, err := a.bearerClient(token).Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Error("authorized request failed", "url", req.URL.String(), "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		a.expire(token)
		return nil, domain.ErrSessionExpired
	}
	return resp, nil
}

func (a *Authority) bearerClient(token string) *http.Client {
	return &http.Client{
		Timeout: a.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   a.base,
		},
	}
}

// expire ends the session if token is still the current one. A newer login
// that raced the failing request is left alone.
func (a *Authority) expire(token string) {
	a.mu.Lock()
	if a.creds.Token != token {
		a.mu.Unlock()
		return
	}
	a.creds = domain.Credentials{}
	a.mu.Unlock()

	a.logger.Warn("session expired")
	a.clearStore()
	a.notify(false)
}

// === Account flows ===

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Login exchanges email and password for a session
func (a *Authority) Login(ctx context.Context, email, password string) (domain.User, error) {
	if err := ValidateLogin(email, password); err != nil {
		return domain.User{}, err
	}
	return a.authenticate(ctx, "/auth/login", loginRequest{Email: email, Password: password})
}

// Register creates an account and signs in with it
func (a *Authority) Register(ctx context.Context, email, username, password string) (domain.User, error) {
	if err := ValidateRegister(email, username, password, password); err != nil {
		return domain.User{}, err
	}
	return a.authenticate(ctx, "/auth/register", registerRequest{Email: email, Username: username, Password: password})
}

func (a *Authority) authenticate(ctx context.Context, path string, payload any) (domain.User, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: a.timeout, Transport: a.base}
	resp, err := client.Do(req)
	if err != nil {
		a.logger.Error("auth request failed", "path", path, "error", err)
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		a.logger.Error("auth server error", "path", path, "status", resp.StatusCode, "body", string(respBody))
		return domain.User{}, fmt.Errorf("%w: status %d", domain.ErrServer, resp.StatusCode)
	case resp.StatusCode >= 400:
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, serverMessage(respBody, resp.StatusCode))
	}

	var auth authResponse
	if err := json.Unmarshal(respBody, &auth); err != nil || auth.Token == "" {
		return domain.User{}, fmt.Errorf("%w: malformed auth response", domain.ErrServer)
	}

	creds := domain.Credentials{Token: auth.Token, User: auth.User}
	a.mu.Lock()
	a.creds = creds
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.SaveSession(creds); err != nil {
			a.logger.Error("failed to persist session", "error", err)
		}
	}

	a.logger.Info("signed in", "username", auth.User.Username)
	a.notify(true)
	return auth.User, nil
}

// Verify checks the held credential with the server and refreshes the user.
// A rejected credential ends the session. A network failure keeps it so the
// client stays usable offline.
func (a *Authority) Verify(ctx context.Context) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/verify", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.AuthorizedRequest(req)
	if err != nil {
		return domain.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.User{}, fmt.Errorf("%w: verify returned %d", domain.ErrServer, resp.StatusCode)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return domain.User{}, fmt.Errorf("%w: malformed verify response", domain.ErrServer)
	}

	a.mu.Lock()
	a.creds.User = user
	a.mu.Unlock()
	return user, nil
}

// Logout ends the session locally. Favorites stay on disk.
func (a *Authority) Logout() error {
	a.mu.Lock()
	wasAuthenticated := a.creds.Token != ""
	a.creds = domain.Credentials{}
	a.mu.Unlock()

	var err error
	if a.store != nil {
		err = a.store.ClearSession()
	}
	if wasAuthenticated {
		a.logger.Info("signed out")
		a.notify(false)
	}
	return err
}

// Reload adopts credentials written by another process (config watcher).
// Nothing happens when the token did not change.
func (a *Authority) Reload(creds domain.Credentials) {
	a.mu.Lock()
	if a.creds.Token == creds.Token {
		a.creds.User = creds.User
		a.mu.Unlock()
		return
	}
	a.creds = creds
	a.mu.Unlock()

	a.logger.Info("session reloaded", "authenticated", creds.Token != "")
	a.notify(creds.Token != "")
}

func (a *Authority) clearStore() {
	if a.store == nil {
		return
	}
	if err := a.store.ClearSession(); err != nil {
		a.logger.Error("failed to clear persisted session", "error", err)
	}
}

func (a *Authority) notify(authenticated bool) {
	a.mu.RLock()
	listeners := append([]Listener(nil), a.listeners...)
	a.mu.RUnlock()

	for _, l := range listeners {
		l(authenticated)
	}
}

func serverMessage(body []byte, status int) string {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("status %d", status)
}
