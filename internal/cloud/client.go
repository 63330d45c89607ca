package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avetrov-io/cloudmig/internal/logging"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// defaultHTTPTimeout bounds a single management API request. Retries
// across requests are the retry layer's job, not the transport's.
const defaultHTTPTimeout = 30 * time.Second

// errorBody is the JSON error envelope the management API returns on
// non-2xx responses.
type errorBody struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Client is a JSON/HTTP client for the migration management API.
// It performs no retrying of its own; failures come back as
// *cloudmig.APIError for the retry layer to classify.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     cloudmig.Logger
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l cloudmig.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a management API client. tokens may be nil for
// unauthenticated endpoints (local test servers).
func NewClient(baseURL string, tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		tokens:     tokens,
		logger:     logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DescribeServer fetches the current state of a managed server.
func (c *Client) DescribeServer(ctx context.Context, serverID string) (*ServerState, error) {
	var state ServerState
	if err := c.do(ctx, http.MethodGet, "/servers/"+url.PathEscape(serverID), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// StartReplication begins replicating a server onto its target tier.
func (c *Client) StartReplication(ctx context.Context, req StartReplicationRequest) (*MigrationJob, error) {
	var job MigrationJob
	if err := c.do(ctx, http.MethodPost, "/jobs", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// JobStatus fetches the current state of a migration job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*MigrationJob, error) {
	var job MigrationJob
	if err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartCutover finalizes a migration job.
func (c *Client) StartCutover(ctx context.Context, jobID string) (*MigrationJob, error) {
	var job MigrationJob
	if err := c.do(ctx, http.MethodPost, "/jobs/"+url.PathEscape(jobID)+"/cutover", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

var _ API = (*Client)(nil)

// do executes one request. Non-2xx responses are decoded into a
// *cloudmig.APIError preserving the status, provider code, failure kind,
// and any Retry-After header.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, _, err := c.tokens.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("acquire API token (%s): %w", c.tokens, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Verbose("management API: %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	apiErr := &cloudmig.APIError{
		Status:     resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(raw) > 0 {
		var body errorBody
		if json.Unmarshal(raw, &body) == nil && (body.Code != "" || body.Message != "") {
			apiErr.Code = body.Code
			apiErr.Kind = body.Kind
			apiErr.Message = body.Message
		} else {
			apiErr.Message = preview(string(raw))
		}
	}

	return apiErr
}

// preview truncates an opaque response body for error messages.
func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > cloudmig.MaxErrorPreviewLength {
		return s[:cloudmig.MaxErrorPreviewLength] + "..."
	}
	return s
}
