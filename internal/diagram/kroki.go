package diagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// KrokiClient renders diagram sources through a Kroki server's REST API
// (POST /{endpoint}/{format}). The underlying http.Client is shared across
// calls so TCP connections pool the way the corpus's other HTTP-backed
// caches (the site-generator example's image downloads) already do.
type KrokiClient struct {
	baseURL string
	http    *http.Client
}

func NewKrokiClient(baseURL string, timeout time.Duration) *KrokiClient {
	return &KrokiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Render posts source to Kroki and returns the rendered diagram bytes
// (SVG markup or PNG binary, depending on format).
func (c *KrokiClient) Render(ctx context.Context, endpoint, format, source string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, endpoint, format)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kroki returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
