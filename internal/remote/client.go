package remote

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

	"github.com/chandraa-ads/sthree-storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("resource not found in remote store")

// StatusError is returned for any non-2xx response that is not a 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store returned %d: %s", e.Code, e.Body)
}

// Client talks HTTP/JSON to the commerce backend, the store of record for
// carts, products, reviews and wishlists. Routes are backend-owned; this
// client only adapts them.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

type cartResponse struct {
	UserID string            `json:"user_id"`
	Lines  []domain.CartLine `json:"lines"`
}

// FetchCart returns the full set of cart lines for a user.
func (c *Client) FetchCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var resp cartResponse
	path := "/api/cart/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil // no cart yet is an empty cart
		}
		return nil, err
	}
	return resp.Lines, nil
}

// AddLine creates or increments a cart line. The backend decides whether the
// candidate merges into an existing line; the returned cart is authoritative.
func (c *Client) AddLine(ctx context.Context, userID string, line domain.CartLine) ([]domain.CartLine, error) {
	var resp cartResponse
	path := "/api/cart/" + url.PathEscape(userID) + "/lines"
	if err := c.do(ctx, http.MethodPost, path, line, &resp); err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

type updateQuantityRequest struct {
	domain.CartLine
	NewQuantity int `json:"new_quantity"`
}

// UpdateQuantity sets a line's quantity. The backend expects the full line
// context alongside the target quantity and answers with an acknowledgement.
func (c *Client) UpdateQuantity(ctx context.Context, userID string, line domain.CartLine, quantity int) error {
	path := "/api/cart/" + url.PathEscape(userID) + "/lines/" + url.PathEscape(line.ID)
	return c.do(ctx, http.MethodPut, path, updateQuantityRequest{CartLine: line, NewQuantity: quantity}, nil)
}

// RemoveLine deletes one line from the user's cart.
func (c *Client) RemoveLine(ctx context.Context, userID, lineID string) error {
	path := "/api/cart/" + url.PathEscape(userID) + "/lines/" + url.PathEscape(lineID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ClearCart deletes every line for the user.
func (c *Client) ClearCart(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(userID), nil, nil)
}

// Product fetches one product by id.
func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductQuery narrows the product listing server-side. Local filtering and
// fuzzy search happen on top of the returned slice.
type ProductQuery struct {
	Category string
	Search   string
}

func (c *Client) Products(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	vals := url.Values{}
	if q.Category != "" {
		vals.Set("category", q.Category)
	}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	path := "/api/products"
	if len(vals) > 0 {
		path += "?" + vals.Encode()
	}

	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

type averageRatingResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func (c *Client) AverageRating(ctx context.Context, productID string) (float64, error) {
	var resp averageRatingResponse
	path := "/api/products/" + url.PathEscape(productID) + "/rating"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Average, nil
}

func (c *Client) Reviews(ctx context.Context, productID string) ([]domain.Review, error) {
	var reviews []domain.Review
	path := "/api/products/" + url.PathEscape(productID) + "/reviews"
	if err := c.do(ctx, http.MethodGet, path, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) PostReview(ctx context.Context, review domain.Review) error {
	path := "/api/products/" + url.PathEscape(review.ProductID) + "/reviews"
	return c.do(ctx, http.MethodPost, path, review, nil)
}

type wishlistResponse struct {
	Wishlisted bool `json:"wishlisted"`
}

// ToggleWishlist flips the wishlist flag for a product and returns the new state.
func (c *Client) ToggleWishlist(ctx context.Context, userID, productID string) (bool, error) {
	var resp wishlistResponse
	path := "/api/wishlist/" + url.PathEscape(userID) + "/" + url.PathEscape(productID) + "/toggle"
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Wishlisted, nil
}

func (c *Client) InWishlist(ctx context.Context, userID, productID string) (bool, error) {
	var resp wishlistResponse
	path := "/api/wishlist/" + url.PathEscape(userID) + "/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return resp.Wishlisted, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("remote store request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// cap the echoed body, error strings end up in logs
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("remote store rejected request",
			zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
