package givehub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Client is a GiveHub API client. It is safe for concurrent use.
type Client struct {
	cfg     Config
	options *Options
	http    *resty.Client
	uploads *resty.Client
	tokens  *tokenStore
	metrics *metrics

	refreshGroup singleflight.Group

	Auth          *Auth
	Campaigns     *Campaigns
	Donations     *Donations
	Impact        *Impact
	Updates       *Updates
	Notifications *Notifications
}

// Request describes one API call. At most one of Body, Query and File may be
// set.
type Request struct {
	Method     string
	Endpoint   string
	PathParams map[string]string
	Body       any
	Query      Params
	File       *File
}

// File is a local file uploaded as a multipart form field.
type File struct {
	Field string
	Path  string
}

// Params are query parameters passed to the API verbatim.
type Params map[string]string

// New creates a client from cfg. Zero fields of cfg other than BaseURL fall
// back to their defaults.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := newClientOptions()

	for _, o := range opts {
		o(options)
	}

	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	m, err := newMetrics(options.metricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	c := &Client{
		cfg:     cfg,
		options: options,
		tokens:  &tokenStore{access: cfg.AccessToken, refresh: cfg.RefreshToken},
		metrics: m,
	}

	c.http = newTransport(cfg, options, options.retryCount)
	// Multipart bodies are built from a reader consumed by the first attempt,
	// so uploads never go through resty's retry loop.
	c.uploads = newTransport(cfg, options, 0)

	c.Auth = &Auth{client: c}
	c.Campaigns = &Campaigns{client: c}
	c.Donations = &Donations{client: c}
	c.Impact = &Impact{client: c}
	c.Updates = &Updates{client: c}
	c.Notifications = newNotifications(c)

	return c, nil
}

func newTransport(cfg Config, options *Options, retryCount int) *resty.Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL+"/"+cfg.Version).
		SetTimeout(options.requestTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(options.retryWaitTime).
		SetRetryMaxWaitTime(options.retryMaxWaitTime).
		AddRetryCondition(options.retryPolicy).
		SetLogger(options.requestLogger).
		SetHeaders(options.requestHeaders).
		SetHeader("User-Agent", options.userAgent)

	if cfg.APIKey != "" {
		rc.SetHeader(headerAPIKey, cfg.APIKey)
	}

	return rc
}

// Session returns a copy of the current credentials.
func (c *Client) Session() Session {
	return c.tokens.snapshot()
}

// SetTokens installs previously stored credentials, e.g. a session restored
// from disk by the caller.
func (c *Client) SetTokens(accessToken, refreshToken string) {
	c.tokens.set(accessToken, refreshToken)
}

// ClearTokens drops all credentials; subsequent requests are unauthenticated.
func (c *Client) ClearTokens() {
	c.tokens.set("", "")
}

// Request performs req and decodes the JSON response object.
func (c *Client) Request(ctx context.Context, req Request) (Response, error) {
	var out Response

	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}

	if out == nil {
		out = Response{}
	}

	return out, nil
}

// Do performs req and decodes the JSON response into out. A nil out discards
// the body. A 401 response is retried once after refreshing the access token
// when a refresh token is held.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c == nil {
		return errors.New("givehub client is nil")
	}

	body, err := c.execute(ctx, req, true)
	if err != nil {
		return err
	}

	if err := decodeResponse(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.method(), req.Endpoint, err)
	}

	return nil
}

func decodeResponse(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	return json.Unmarshal(body, out)
}

func (c *Client) execute(ctx context.Context, req Request, allowRefresh bool) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var upload []byte
	if req.File != nil {
		data, err := os.ReadFile(req.File.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", req.File.Path, err)
		}
		upload = data
	}

	token := c.tokens.accessToken()

	resp, err := c.send(ctx, req, upload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized && allowRefresh && c.tokens.refreshToken() != "" {
		c.options.requestLogger.Debugf("%s %s returned 401, refreshing access token", req.method(), resp.Request.URL)

		if err := c.refreshAfter(ctx, token); err != nil {
			return nil, err
		}

		resp, err = c.send(ctx, req, upload, c.tokens.accessToken())
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		reqErr := &RequestError{
			Method:     req.method(),
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Message:    errorMessage(resp.Body()),
		}
		c.options.requestLogger.Warnf("%v", reqErr)

		return nil, reqErr
	}

	return resp.Body(), nil
}

func (c *Client) send(ctx context.Context, req Request, upload []byte, token string) (*resty.Response, error) {
	transport := c.http
	if req.File != nil {
		transport = c.uploads
	}

	r := transport.R().
		SetContext(ctx).
		SetHeader(headerRequestID, uuid.NewString())

	if len(req.PathParams) > 0 {
		r.SetPathParams(req.PathParams)
	}

	if token != "" {
		r.SetAuthToken(token)
	}

	switch {
	case req.Body != nil:
		r.SetBody(req.Body)
	case len(req.Query) > 0:
		r.SetQueryParams(req.Query)
	case req.File != nil:
		r.SetFileReader(req.File.field(), filepath.Base(req.File.Path), bytes.NewReader(upload))
	}

	resp, err := r.Execute(req.method(), req.Endpoint)
	if err != nil {
		c.metrics.observeRequest(req.method(), 0)
		connErr := &ConnectionError{Method: req.method(), URL: r.URL, Err: err}
		c.options.requestLogger.Errorf("%v", connErr)

		return nil, connErr
	}

	c.metrics.observeRequest(req.method(), resp.StatusCode())

	return resp, nil
}

// refreshAfter refreshes the access token that produced a 401. Concurrent
// callers share one in-flight refresh; a caller whose stale token has already
// been replaced returns without refreshing again.
func (c *Client) refreshAfter(ctx context.Context, stale string) error {
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		if current := c.tokens.accessToken(); current != "" && current != stale {
			return nil, nil
		}

		return nil, c.Auth.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) url(endpoint string) string {
	return c.cfg.BaseURL + "/" + c.cfg.Version + endpoint
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}

	return strings.ToUpper(r.Method)
}

func (r Request) validate() error {
	if !strings.HasPrefix(r.Endpoint, "/") {
		return fmt.Errorf("endpoint %q must start with /", r.Endpoint)
	}

	payloads := 0

	if r.Body != nil {
		payloads++
	}

	if len(r.Query) > 0 {
		payloads++
	}

	if r.File != nil {
		payloads++
	}

	if payloads > 1 {
		return errors.New("request body, query parameters and file upload are mutually exclusive")
	}

	return nil
}

func (f *File) field() string {
	if f.Field == "" {
		return "media"
	}

	return f.Field
}
