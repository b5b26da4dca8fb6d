// Package client talks to the IndustryView REST API: a generic paginated
// resource client for the plain collections and a sprint client for the
// task board.
package client

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

	"github.com/google/uuid"
	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/config"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Scope is the ambient project and user every request is made for.
type Scope struct {
	ProjectID uint
	UserID    uint
}

// Options holds parameters for creating a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// HTTPClient is the base transport, e.g. an httptest server's client.
	HTTPClient *http.Client
}

// Client is a JSON client for the REST API.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client. A non-empty token is sent as a bearer token.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("client: base url is required")
	}
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	}
	return &Client{base: base, http: hc}, nil
}

// FromConfig creates a Client from the api section of the config.
func FromConfig(cfg config.APIConfig) (*Client, error) {
	return New(Options{BaseURL: cfg.BaseURL, Token: cfg.Token, Timeout: cfg.Timeout()})
}

// Do sends one request and decodes a JSON response into out, which may be
// nil. Error envelopes come back as *apperr.Error; transport failures and
// timeouts as network errors.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperr.Internal(fmt.Errorf("client: encode %s %s: %w", method, path, err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return apperr.Internal(fmt.Errorf("client: build %s %s: %w", method, path, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperr.Network(fmt.Errorf("client: %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Network(fmt.Errorf("client: read %s %s: %w", method, path, err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var env apperr.Envelope
		if len(data) > 0 {
			json.Unmarshal(data, &env)
		}
		return apperr.FromEnvelope(resp.StatusCode, env)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.Internal(fmt.Errorf("client: decode %s %s: %w", method, path, err))
	}
	return nil
}
