package cartapi

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
	"time"

	pkgerrors "github.com/almahra/storefront/pkg/errors"
)

const (
	defaultBaseURL           = "http://localhost:5000/api"
	defaultTimeout           = 10 * time.Second
	errorBodyReadLimit int64 = 8192
	tokenExpiredCode         = "token_expired"
)

var errBaseURLRequired = errors.New("storefront api base url is required")

// TokenStore supplies bearer tokens and accepts a refreshed access token.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	UpdateAccessToken(token string) error
}

// Observer receives the outcome of every remote call.
type Observer interface {
	ObserveRemote(operation, outcome string, elapsed time.Duration)
}

// Client talks to the storefront REST backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenStore
	observer   Observer
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenStore attaches bearer credentials to outgoing requests.
func WithTokenStore(tokens TokenStore) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithObserver records per-call latency and outcome.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithTimeout replaces the default client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a backend client rooted at baseURL (e.g. http://host/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("parse storefront api base url: %w", err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// GetCart fetches the authenticated user's server cart.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, "get_cart", http.MethodGet, "cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem posts a new line (or an increment of an existing one) to the server cart.
func (c *Client) AddItem(ctx context.Context, req AddItemRequest) error {
	if req.ProductID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if req.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return c.do(ctx, "add_item", http.MethodPost, "cart/add", req, nil)
}

// UpdateItem sets the quantity of the server line identified by itemID.
func (c *Client) UpdateItem(ctx context.Context, itemID string, req UpdateItemRequest) error {
	if strings.TrimSpace(itemID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	return c.do(ctx, "update_item", http.MethodPut, "cart/update/"+url.PathEscape(itemID), req, nil)
}

// RemoveItem deletes the server line identified by itemID.
func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	return c.do(ctx, "remove_item", http.MethodDelete, "cart/remove/"+url.PathEscape(itemID), nil, nil)
}

// Clear empties the server cart.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, "clear_cart", http.MethodDelete, "cart/clear", nil, nil)
}

// Count returns the server-side item count.
func (c *Client) Count(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, "count_cart", http.MethodGet, "cart/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Validate asks the backend to re-check stock for every server line. A 400
// carrying per-item issues is returned as an invalid Validation rather than an
// error.
func (c *Client) Validate(ctx context.Context) (*Validation, error) {
	var result Validation
	err := c.do(ctx, "validate_cart", http.MethodPost, "cart/validate", nil, &result)
	if err == nil {
		return &result, nil
	}

	var remote *pkgerrors.RemoteFailure
	if errors.As(err, &remote) && remote.Status == http.StatusBadRequest {
		var invalid Validation
		if jsonErr := json.Unmarshal([]byte(remote.Body), &invalid); jsonErr == nil && len(invalid.Errors) > 0 {
			invalid.Valid = false
			return &invalid, nil
		}
	}
	return nil, err
}

// CreateOrder hands a cart snapshot to the order service.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order items are required")
	}
	var resp struct {
		Order Order `json:"order"`
	}
	if err := c.do(ctx, "create_order", http.MethodPost, "orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "storefront api client not configured")
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+op+" request")
		}
		body = encoded
	}

	start := time.Now()
	err := c.send(ctx, op, method, path, body, out, true)
	c.observe(op, err, time.Since(start))
	return err
}

func (c *Client) send(ctx context.Context, op, method, path string, body []byte, out any, allowRefresh bool) error {
	req, err := c.newRequest(ctx, method, path, body, c.accessToken())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		parsed := parseErrorBody(raw)
		if allowRefresh && c.canRefresh() && isTokenExpired(resp.StatusCode, parsed) {
			if err := c.refresh(ctx); err != nil {
				return err
			}
			return c.send(ctx, op, method, path, body, out, false)
		}
		return remoteError(op, resp.StatusCode, raw, parsed)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return nil
}

func (c *Client) refresh(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "auth/refresh", nil, c.tokens.RefreshToken())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build refresh request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute refresh request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, &pkgerrors.RemoteFailure{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}, "session refresh failed")
	}

	var payload refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode refresh response")
	}
	if payload.AccessToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session refresh returned no access token")
	}
	if err := c.tokens.UpdateAccessToken(payload.AccessToken); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "store refreshed access token")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte, bearer string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req, nil
}

func (c *Client) accessToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

func (c *Client) canRefresh() bool {
	return c.tokens != nil && c.tokens.RefreshToken() != ""
}

func (c *Client) observe(op string, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(pkgerrors.CodeInternal))
		if typed := pkgerrors.As(err); typed != nil {
			outcome = strings.ToLower(string(typed.Code()))
		}
	}
	c.observer.ObserveRemote(op, outcome, elapsed)
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func parseErrorBody(raw []byte) errorBody {
	var parsed errorBody
	_ = json.Unmarshal(raw, &parsed)
	return parsed
}

func isTokenExpired(status int, body errorBody) bool {
	if status != http.StatusUnauthorized && status != http.StatusUnprocessableEntity {
		return false
	}
	return body.Code == tokenExpiredCode
}

func remoteError(op string, status int, raw []byte, body errorBody) error {
	failure := &pkgerrors.RemoteFailure{Status: status, Body: strings.TrimSpace(string(raw))}

	message := strings.TrimSpace(body.Error)
	if message == "" {
		message = strings.TrimSpace(body.Message)
	}
	if message == "" {
		message = strings.ReplaceAll(op, "_", " ") + " request failed"
	}

	if body.AvailableStock != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStockConflict, failure, message).WithDetails(StockDetails{
			Message:        message,
			AvailableStock: body.AvailableStock,
			CurrentInCart:  body.CurrentInCart,
		})
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, failure, message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, failure, message)
	case status == http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, failure, message)
	case status == http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, failure, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, failure, message)
	}
}
