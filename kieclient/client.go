package kieclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
)

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = time.Second * 30

// Config describes how to reach a workbench's REST API.
type Config struct {
	// BaseURL is the application root, such as http://localhost:8080/kie-wb/. Resource paths such as
	// rest/task/query are resolved against it.
	BaseURL   string
	User      string
	Password  string
	MediaType kieapi.MediaType
	Timeout   time.Duration
	Logger    framework.Logger
	// HTTPClient overrides the pooled client created by New.
	HTTPClient *http.Client
}

// Client calls the REST API as one user with one media type. It is safe for concurrent use.
type Client struct {
	config  Config
	baseURL *url.URL
	http    *http.Client
	logger  framework.Logger
}

// New creates a Client. MediaType defaults to XML, which is what the server produces when no
// Accept header is sent.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	base := config.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", config.BaseURL)
	}
	if config.MediaType == "" {
		config.MediaType = kieapi.MediaTypeXML
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = config.Timeout
	}
	return &Client{
		config:  config,
		baseURL: u,
		http:    httpClient,
		logger:  framework.LoggerOrNull(config.Logger),
	}, nil
}

// WithMediaType returns a copy of the client that sends and expects the given media type.
func (c *Client) WithMediaType(m kieapi.MediaType) *Client {
	ret := *c
	ret.config.MediaType = m
	return &ret
}

// WithLogger returns a copy of the client that logs to the given logger.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	ret := *c
	ret.logger = framework.LoggerOrNull(logger)
	return &ret
}

// MediaType returns the media type this client uses.
func (c *Client) MediaType() kieapi.MediaType { return c.config.MediaType }

// User returns the user this client authenticates as.
func (c *Client) User() string { return c.config.User }

// BaseURL returns the application root URL, always ending in a slash.
func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) resolve(path string, query url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

type request struct {
	method    string
	path      string
	query     url.Values
	body      any
	mediaType kieapi.MediaType
	accept    *string
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, r request) (*http.Response, []byte, error) {
	mediaType := r.mediaType
	if mediaType == "" {
		mediaType = c.config.MediaType
	}
	var body io.Reader
	if r.body != nil {
		data, err := mediaType.Marshal(r.body)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not encode request")
		}
		body = bytes.NewReader(data)
	}
	target := c.resolve(r.path, r.query)
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, nil, err
	}
	if c.config.User != "" {
		req.SetBasicAuth(c.config.User, c.config.Password)
	}
	switch {
	case r.accept != nil:
		if *r.accept != "" {
			req.Header.Set("Accept", *r.accept)
		}
	default:
		req.Header.Set("Accept", string(mediaType))
	}
	if body != nil {
		req.Header.Set("Content-Type", string(mediaType))
	}

	c.logger.Printf("%s %s", r.method, target)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s %s", r.method, target)
	}
	defer resp.Body.Close() //nolint:errcheck
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, errors.Wrapf(err, "reading response to %s %s", r.method, target)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Printf("WARNING: %s %s returned status %d, body: %s", r.method, target, resp.StatusCode, string(data))
		return resp, data, newResponseError(r.method, target, resp.StatusCode, data)
	}
	return resp, data, nil
}

// call performs the request and decodes a 2xx response into out, if out is non-nil.
func (c *Client) call(ctx context.Context, r request, out any) error {
	resp, data, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	mediaType := r.mediaType
	if mediaType == "" {
		mediaType = c.config.MediaType
	}
	if detected, ok := kieapi.DetectMediaType(data); ok && detected != mediaType {
		return fmt.Errorf("%s %s: expected %s response but got %s (Content-Type %q)", r.method, resp.Request.URL,
			mediaType, detected, resp.Header.Get("Content-Type"))
	}
	if err := mediaType.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "could not decode response to %s %s: %s", r.method, resp.Request.URL, string(data))
	}
	return nil
}

// variableParams converts variables into the map_<name>=<value> query parameters the REST API
// uses for process and task variables.
func variableParams(vars kieapi.Variables) url.Values {
	q := url.Values{}
	for _, k := range vars.Keys() {
		v := vars[k]
		if v.IsString() {
			q.Set("map_"+k, v.StringValue())
		} else {
			q.Set("map_"+k, v.JSONString())
		}
	}
	return q
}

// RawPost sends a POST with no body and returns the status and body as text. If accept is empty
// no Accept header is sent. Non-2xx statuses are not treated as errors here.
func (c *Client) RawPost(ctx context.Context, path, accept string) (int, string, error) {
	resp, data, err := c.send(ctx, request{method: http.MethodPost, path: path, accept: &accept})
	var re *ResponseError
	if errors.As(err, &re) {
		return re.StatusCode, re.Body, nil
	}
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(data), nil
}
