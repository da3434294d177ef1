package xnat

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/domain/model"
	"github.com/digione/xnatsync/pkg/domain/types"
)

type client struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *http.Client
}

// Option is a functional option for the XNAT client
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a client authenticating with HTTP Basic auth against baseURL
func NewClient(baseURL, username, password string, opts ...Option) (interfaces.XNATClient, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid XNAT base URL", goerr.V("base_url", baseURL))
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, goerr.New("XNAT base URL must be absolute", goerr.V("base_url", baseURL))
	}

	c := &client{
		baseURL:    parsed,
		username:   username,
		password:   password,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches a listing and decodes its ResultSet
func (c *client) List(ctx context.Context, target string) (*model.ResultSet, error) {
	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rs, err := decodeResultSet(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse listing", goerr.V("url", target), goerr.T(types.ErrTagRetrieval))
	}

	ctxlog.From(ctx).Debug("Fetched listing",
		"url", target,
		"total_records", rs.TotalRecords,
	)

	return rs, nil
}

// Download streams a file into w. uri is resolved against the base URL.
func (c *client) Download(ctx context.Context, uri string, w io.Writer) error {
	ref, err := url.Parse(uri)
	if err != nil {
		return goerr.Wrap(err, "invalid file URI", goerr.V("uri", uri), goerr.T(types.ErrTagRetrieval))
	}
	target := c.baseURL.ResolveReference(ref).String()

	resp, err := c.get(ctx, target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return goerr.Wrap(err, "failed to read file body", goerr.V("url", target), goerr.T(types.ErrTagRetrieval))
	}

	return nil
}

func (c *client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", target), goerr.T(types.ErrTagRetrieval))
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "request to XNAT failed", goerr.V("url", target), goerr.T(types.ErrTagRetrieval))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, goerr.New("unexpected status code from XNAT",
			goerr.V("url", target),
			goerr.V("status", resp.StatusCode),
			goerr.T(types.ErrTagRetrieval),
		)
	}

	return resp, nil
}
