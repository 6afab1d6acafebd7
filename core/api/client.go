// Package api talks to the release API: release lookup and creation,
// asset listing, chunk upload and download, and the contents endpoint used
// to bootstrap empty repositories.
//
// A Client is cheap to build and holds no mutable state, so one is created
// per top-level operation and shared by that operation's goroutines.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pyropy/relstore/core/errs"
	"github.com/pyropy/relstore/lib/logger"
)

var log, _ = logger.New("api")

const (
	DefaultBaseURL   = "https://api.github.com"
	DefaultUserAgent = "relstore"

	// apiVersion pins the REST API version so response shapes stay stable.
	apiVersion = "2022-11-28"

	jsonMediaType   = "application/vnd.github+json"
	binaryMediaType = "application/octet-stream"
)

type Config struct {
	// BaseURL is the API root, defaults to DefaultBaseURL.
	BaseURL string

	// Token is optional. When set it is sent as a bearer credential.
	Token string

	// UserAgent identifies this client to the API. Defaults to DefaultUserAgent.
	UserAgent string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	userAgent  string
	token      credential
	httpClient *http.Client
}

// NewClient never touches the network. It fails only when the token or the
// user agent cannot be carried in an HTTP header.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	if !validHeaderValue(cfg.Token) {
		return nil, fmt.Errorf("api: malformed authorization header")
	}

	if !validHeaderValue(userAgent) {
		return nil, fmt.Errorf("api: malformed user agent header %q", userAgent)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		token:      credential(cfg.Token),
		httpClient: httpClient,
	}, nil
}

// newRequest attaches the identity and credential headers. The credential
// is set on the request rather than in a transport so net/http drops it
// when a download is redirected to another host.
func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", c.token.header())
	}

	return req, nil
}

func (c *Client) send(op string, req *http.Request) (*http.Response, error) {
	log.Debugw("request", "op", op, "method", req.Method, "url", req.URL.String(), "authenticated", c.token != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Transport(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, errs.Transport(op, parseAPIError(resp))
	}

	return resp, nil
}

// doJSON sends in (if non-nil) as a JSON body and decodes a 2xx response into out.
func (c *Client) doJSON(ctx context.Context, op, method, url string, in, out any) (http.Header, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("api: encoding %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, url, body)
	if err != nil {
		return nil, errs.Transport(op, err)
	}

	req.Header.Set("Accept", jsonMediaType)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(op, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, errs.Decode(op, err)
	}

	return resp.Header, nil
}

func validHeaderValue(v string) bool {
	return !strings.ContainsAny(v, "\r\n\x00")
}

func (c *Client) String() string {
	return fmt.Sprintf("api.Client{baseURL: %s, userAgent: %s, token: %s}", c.baseURL, c.userAgent, c.token)
}

func (c *Client) GoString() string {
	return c.String()
}
