package products

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-product-search/internal/apierror"
)

// PageSize is the fixed number of products requested per page.
const PageSize = 2

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 10 << 20

// Offset returns the upstream skip value for a 1-based page.
func Offset(page int) int {
	return (page - 1) * PageSize
}

// Searcher is the product lookup used by the HTTP layer.
type Searcher interface {
	Search(ctx context.Context, query string, page int) ([]UpstreamProduct, error)
}

// Client calls the external product search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// NewClient returns a Client with a pooled transport and the given timeout.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	return &Client{
		httpClient: hc,
		baseURL:    baseURL,
		log:        log.With().Str("component", "upstream").Logger(),
	}
}

func (c *Client) searchURL(query string, page int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrap(err, "parse base url")
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(PageSize))
	q.Set("skip", strconv.Itoa(Offset(page)))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Search fetches one page of products. Network failures come back as
// UpstreamTransport errors; bad statuses and bodies as UpstreamFormat errors.
func (c *Client) Search(ctx context.Context, query string, page int) ([]UpstreamProduct, error) {
	target, err := c.searchURL(query, page)
	if err != nil {
		return nil, apierror.UpstreamTransport(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apierror.UpstreamTransport(errors.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierror.UpstreamTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, apierror.UpstreamTransport(errors.Wrap(err, "read response body"))
	}
	if len(body) > maxResponseBytes {
		return nil, apierror.UpstreamFormat(fmt.Errorf("response body exceeds %d bytes", maxResponseBytes))
	}

	c.log.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("latency", time.Since(start)).
		Msg("upstream search")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierror.UpstreamFormat(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, apierror.UpstreamFormat(err)
	}
	if sr.Products == nil {
		return nil, apierror.UpstreamFormat(errors.New("response has no products field"))
	}
	return *sr.Products, nil
}
