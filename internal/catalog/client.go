package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
)

const (
	defaultBaseURL           = "https://fakestoreapi.com"
	defaultTimeout           = 5 * time.Second
	errorBodyReadLimit int64 = 1024
)

// Product is the catalog view of a sellable item. Price is parsed into a
// decimal so money math downstream never goes through floats.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// Client wraps the upstream product catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
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

// WithBaseURL overrides the configured catalog base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the catalog client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
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

	return client
}

// FetchProduct retrieves a single product by its catalog id.
//
// The upstream API answers unknown ids with 200 and an empty body, so both
// that case and a plain 404 map to a not-found error.
func (c *Client) FetchProduct(ctx context.Context, productID int64) (*Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}

	body, err := c.get(ctx, fmt.Sprintf("products/%d", productID))
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found in catalog", productID))
	}

	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode catalog product response")
	}
	if product.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found in catalog", productID))
	}

	return &product, nil
}

// FetchAllProducts retrieves the full catalog listing.
func (c *Client) FetchAllProducts(ctx context.Context) ([]Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}

	body, err := c.get(ctx, "products")
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode catalog listing response")
	}

	return products, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.buildURL(path)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build catalog request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamTimeout, err, "catalog request timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog resource not found")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "catalog request failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "read catalog response")
	}
	return body, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
