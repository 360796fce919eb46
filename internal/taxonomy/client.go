package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 8 * time.Second

// ErrSourceUnavailable is returned when a source cannot produce categories.
var ErrSourceUnavailable = errors.New("taxonomy: source unavailable")

// Source returns raw category records. Implementations must be safe to retry.
type Source interface {
	FetchCategories(ctx context.Context) ([]Raw, error)
}

// SourceFunc adapts ordinary functions to Source.
type SourceFunc func(context.Context) ([]Raw, error)

// FetchCategories calls the wrapped function.
func (f SourceFunc) FetchCategories(ctx context.Context) ([]Raw, error) { return f(ctx) }

// Client reads categories from the catalogue API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs an API client. When baseURL is empty, the client serves the demo catalogue.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type categoriesPayload struct {
	Categories []Raw `json:"categories"`
}

// FetchCategories issues GET {base}/api/categories.
func (c *Client) FetchCategories(ctx context.Context) ([]Raw, error) {
	if c == nil || c.baseURL == "" {
		return demoCategories(), nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "api", "categories")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, drainError(resp.Body))
	}

	var payload categoriesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("taxonomy: decode categories: %w", err)
	}
	return payload.Categories, nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

func demoCategories() []Raw {
	return []Raw{
		{Name: "Abaya", Group: GroupFemme},
		{Name: "Caftan", Group: GroupFemme},
		{Name: "Robe Soire", Group: GroupFemme},
		{Name: "Jebba", Group: GroupFemme},
		{Name: "Enfants Caftan", Group: GroupEnfant},
		{Name: "Enfants Robe Soire", Group: GroupEnfant},
		{Name: "Tabdila", Group: GroupEnfant},
		{Name: "Chachia", Group: GroupAccessoire},
		{Name: "Pochette", Group: GroupAccessoire},
		{Name: "Eventaille", Group: GroupAccessoire},
		{Name: "Foulard", Group: GroupAccessoire},
	}
}
