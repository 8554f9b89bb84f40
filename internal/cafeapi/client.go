package cafeapi

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

	"cafe-frontdesk/internal/metrics"
	"cafe-frontdesk/internal/models"

	"golang.org/x/oauth2"
)

// Client talks to the cafe backend REST API. Requests to staff endpoints are
// sent through a transport that attaches the bearer token from the injected
// credential provider; public endpoints never carry it.
type Client struct {
	baseURL *url.URL
	public  *http.Client
	authed  *http.Client
}

// NewClient builds a client for baseURL. creds may be nil for a client that
// only calls public endpoints.
func NewClient(baseURL string, httpClient *http.Client, creds oauth2.TokenSource) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("cafeapi: invalid base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{baseURL: u, public: httpClient}
	c.authed = authedClient(httpClient, creds)
	return c, nil
}

// WithCredentials returns a copy of c whose staff requests use creds.
func (c *Client) WithCredentials(creds oauth2.TokenSource) *Client {
	return &Client{baseURL: c.baseURL, public: c.public, authed: authedClient(c.public, creds)}
}

func authedClient(base *http.Client, creds oauth2.TokenSource) *http.Client {
	if creds == nil {
		return base
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   base.Timeout,
		Transport: &oauth2.Transport{Source: creds, Base: rt},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// do executes one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, op string, r call, out any) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveBackendCall(op, started, err) }()

	// r.path is already escaped; parsing keeps RawPath so it is not escaped twice.
	ref, err := url.Parse(strings.TrimPrefix(r.path, "/"))
	if err != nil {
		return fmt.Errorf("cafeapi.%s: path: %w", op, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("cafeapi.%s: encode: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("cafeapi.%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.public
	if r.auth {
		hc = c.authed
	}
	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			return fmt.Errorf("cafeapi.%s: %w", op, models.ErrUnauthorized)
		}
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = firstNonEmpty(env.Message, env.Error)
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("cafeapi.%s: decode envelope: %w", op, decodeErr)
	}
	if !env.Success {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: firstNonEmpty(env.Message, env.Error)}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("cafeapi.%s: decode data: %w", op, err)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
