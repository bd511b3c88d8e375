// Package api implements the authenticated HTTP client for the tracker
// API. It attaches the bearer token from the session store, handles 401
// globally (clear token, navigate to login, fail the call), and has a
// deliberate no-retry policy: every call is user-triggered and a silent
// retry could duplicate financial records on writes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

var (
	// ErrUnauthorized is returned after the global 401 handling ran.
	// Callers must not try to read a body after it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork marks transport failures where no response arrived.
	ErrNetwork = errors.New("network error")
)

// StatusError is a non-2xx response surfaced to the caller for inline
// handling. Message carries the server-supplied error verbatim when the
// body had one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// TokenStore is the slice of the session store the client needs.
type TokenStore interface {
	Token() (string, bool)
	DeleteToken() error
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenStore
	onUnauthorized func()
	log            *log.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUnauthorizedHandler sets the navigation hook invoked once per 401
// after the token has been cleared.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger attaches a logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.log = logger.WithComponent(log.ComponentAPI) }
}

// New creates a client for the API rooted at baseURL (including the
// /api path segment).
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		log:     log.New(log.Config{Component: log.ComponentAPI}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Request performs an authenticated call and returns the raw response.
// Transport failures come back wrapped in ErrNetwork. A 401 clears the
// stored token, fires the unauthorized navigation hook and returns
// ErrUnauthorized without exposing the response. All other statuses are
// the caller's to handle; there is no retry.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := c.tokens.DeleteToken(); err != nil {
			c.log.Error("clearing token after 401 failed", log.FieldError, err)
		}
		c.log.Warn("session rejected by server, logging out",
			log.FieldMethod, method, log.FieldEndpoint, endpoint)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, ErrUnauthorized
	}

	return resp, nil
}

// do runs an authenticated call and decodes a 2xx JSON body into out.
// Non-2xx responses become a *StatusError carrying the server message.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	resp, err := c.Request(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

// public runs an unauthenticated call (login, register). No bearer is
// attached and a 401 here is a credential failure for the caller, not a
// session expiry, so the global handling does not apply.
func (c *Client) public(ctx context.Context, method, endpoint string, body, out any) error {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	statusErr := &StatusError{Code: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			statusErr.Message = payload.Error
		}
	}
	return statusErr
}

// Login authenticates with an email or username plus password.
func (c *Client) Login(ctx context.Context, emailOrUsername, password string) (AuthResult, error) {
	var resp authResponse
	err := c.public(ctx, http.MethodPost, "/auth/login", loginRequest{
		EmailOrUsername: emailOrUsername,
		Password:        password,
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: resp.Token, Username: resp.User.Username}, nil
}

// Register creates an account and returns a fresh session token.
func (c *Client) Register(ctx context.Context, email, username, password string) (AuthResult, error) {
	var resp authResponse
	err := c.public(ctx, http.MethodPost, "/auth/register", registerRequest{
		Email:    email,
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: resp.Token, Username: resp.User.Username}, nil
}

// Profile fetches the authoritative user record.
func (c *Client) Profile(ctx context.Context) (core.Profile, error) {
	var profile core.Profile
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &profile); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}

// UpdateSettings pushes a partial currency/theme update.
func (c *Client) UpdateSettings(ctx context.Context, update SettingsUpdate) error {
	return c.do(ctx, http.MethodPut, "/user/settings", update, nil)
}

// UpdateTheme pushes only the theme preference.
func (c *Client) UpdateTheme(ctx context.Context, theme core.Theme) error {
	return c.UpdateSettings(ctx, SettingsUpdate{Theme: &theme})
}

// Dashboard fetches the server-computed summary. Totals always come
// from here, never from a client-side running sum.
func (c *Client) Dashboard(ctx context.Context) (core.Summary, error) {
	var summary core.Summary
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &summary); err != nil {
		return core.Summary{}, err
	}
	return summary, nil
}

// Categories fetches the category list.
func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	var categories []core.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Incomes lists income records matching the filter, newest first.
func (c *Client) Incomes(ctx context.Context, f ListFilter) ([]core.Transaction, error) {
	return c.listTransactions(ctx, core.TypeIncome, f)
}

// Expenses lists expense records matching the filter, newest first.
func (c *Client) Expenses(ctx context.Context, f ListFilter) ([]core.Transaction, error) {
	return c.listTransactions(ctx, core.TypeExpense, f)
}

func (c *Client) listTransactions(ctx context.Context, typ core.TransactionType, f ListFilter) ([]core.Transaction, error) {
	var records []transactionRecord
	if err := c.do(ctx, http.MethodGet, endpointFor(typ)+f.query(), nil, &records); err != nil {
		return nil, err
	}

	transactions := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		tx, err := r.toTransaction(typ)
		if err != nil {
			c.log.Warn("skipping malformed record",
				log.FieldRecordType, string(typ), log.FieldError, err)
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// CreateTransaction posts a new income or expense record.
func (c *Client) CreateTransaction(ctx context.Context, typ core.TransactionType, in TransactionInput) error {
	return c.do(ctx, http.MethodPost, endpointFor(typ), payloadFor(typ, in), nil)
}

// UpdateTransaction replaces an existing record.
func (c *Client) UpdateTransaction(ctx context.Context, typ core.TransactionType, id int64, in TransactionInput) error {
	return c.do(ctx, http.MethodPut, endpointFor(typ)+"/"+strconv.FormatInt(id, 10), payloadFor(typ, in), nil)
}

// DeleteTransaction removes a record. Nothing is removed locally before
// the server confirms.
func (c *Client) DeleteTransaction(ctx context.Context, typ core.TransactionType, id int64) error {
	return c.do(ctx, http.MethodDelete, endpointFor(typ)+"/"+strconv.FormatInt(id, 10), nil, nil)
}

// ExportPDF streams the server-rendered report into w. Zero dates skip
// the range filter.
func (c *Client) ExportPDF(ctx context.Context, start, end core.Date, w io.Writer) error {
	endpoint := "/export/pdf" + ListFilter{StartDate: start, EndDate: end}.query()
	resp, err := c.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
