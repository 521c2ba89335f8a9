// Package checkoutclient drives a storefront checkout over the JSON API the
// way the storefront's own checkout page does: cascading address lookups,
// VAT recalculation on shipping country change and a resubmittable order
// submission bound to one idempotency key.
package checkoutclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the storefront.
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront: status %d", e.Status)
	}
	return fmt.Sprintf("storefront: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to one storefront. It carries the guest session id the server
// hands out and, after Login, the customer's bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu        sync.Mutex
	sessionID string
	token     string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession resumes an existing guest session.
func WithSession(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Authenticated reports whether a customer is signed in.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// Login signs a customer in. The guest cart of the current session is merged
// into the customer's cart by the server.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, &out); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

// AddItem puts quantity units of a product in the cart.
func (c *Client) AddItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	var cart Cart
	err := c.do(ctx, http.MethodPost, "/api/cart/items", map[string]any{"product_id": productID, "quantity": quantity}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) Countries(ctx context.Context) ([]Place, error) {
	var out []Place
	return out, c.do(ctx, http.MethodGet, "/api/geo/countries", nil, &out)
}

// call is one JSON request; header holds extra request headers.
type call struct {
	method string
	path   string
	body   any
	out    any
	header map[string]string
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.send(ctx, call{method: method, path: path, body: body, out: out})
	return err
}

// send performs cl and returns the response headers. The session id the
// server issues is remembered for later calls.
func (c *Client) send(ctx context.Context, cl call) (http.Header, error) {
	var reader io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("storefront: encode %s %s: %w", cl.method, cl.path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		return nil, fmt.Errorf("storefront: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	if c.sessionID != "" {
		req.Header.Set(constants.HeaderXSessionID, c.sessionID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()
	for k, v := range cl.header {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront: %s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(constants.HeaderXSessionID); id != "" {
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(raw, apiErr) != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return resp.Header, apiErr
	}
	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return resp.Header, fmt.Errorf("storefront: decode %s %s: %w", cl.method, cl.path, err)
	}
	return resp.Header, nil
}
