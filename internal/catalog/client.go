package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apperrors "github.com/urbanhaven/storefront/internal/platform/errors"
)

// defaultTimeout caps each catalog request. Fetches are single-attempt: a
// failed read degrades to an empty listing, it is never retried.
const defaultTimeout = 10 * time.Second

// Client reads products from a catalog API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a catalog client for the given base URL. Requests are
// traced through the otelhttp transport.
func NewClient(baseURL string) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	return &Client{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// Products fetches the full product listing.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Featured fetches the first limit products, used for the home page.
func (c *Client) Featured(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		return c.Products(ctx)
	}
	var products []Product
	if err := c.get(ctx, fmt.Sprintf("/products?limit=%d", limit), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, id int) (Product, error) {
	var product Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", id), &product); err != nil {
		return Product{}, err
	}
	if product.ID == 0 {
		return Product{}, apperrors.E(apperrors.KindNotFound, fmt.Sprintf("product %d not found", id))
	}
	return product, nil
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.E(apperrors.KindUnavailable, fmt.Sprintf("build catalog request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.E(apperrors.KindUnavailable, fmt.Sprintf("catalog request %s: %v", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.E(apperrors.KindNotFound, fmt.Sprintf("catalog path %s not found", path))
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.E(apperrors.KindUnavailable, fmt.Sprintf("catalog responded %d for %s", resp.StatusCode, path))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.E(apperrors.KindUnavailable, fmt.Sprintf("decode catalog response %s: %v", path, err))
	}
	return nil
}
