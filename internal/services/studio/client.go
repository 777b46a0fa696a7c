package studio

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

	"dubloom/internal/services"
	"dubloom/internal/snapshot"
)

// HTTPDoer describes the HTTP client used by the studio service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service is the remote contract the engine depends on.
type Service interface {
	GetDubbing(ctx context.Context, dubbingID string) (*Dubbing, error)
	EditorLatest(ctx context.Context, dubbingID string) (*snapshot.EditorSnapshot, error)
	SubmitRender(ctx context.Context, dubbingID string, payload *snapshot.RenderRequest) (*RenderResponse, error)
	InternalMetadata(ctx context.Context, dubbingID string) (*InternalMetadata, error)
	RenameDubbing(ctx context.Context, dubbingID, name string) error
}

// Client talks to the dubbing studio over its public and studio APIs.
type Client struct {
	apiKey     string
	token      string
	publicBase string
	studioBase string
	httpClient HTTPDoer
}

var _ Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a studio client.
func New(apiKey, token, publicBase, studioBase string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("studio api key required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("studio token required")
	}
	publicBase = strings.TrimRight(strings.TrimSpace(publicBase), "/")
	studioBase = strings.TrimRight(strings.TrimSpace(studioBase), "/")
	if publicBase == "" || studioBase == "" {
		return nil, errors.New("studio base urls required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		token:      token,
		publicBase: publicBase,
		studioBase: studioBase,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetDubbing reads the public view of a project, including its display title.
func (c *Client) GetDubbing(ctx context.Context, dubbingID string) (*Dubbing, error) {
	var out Dubbing
	if err := c.getJSON(ctx, c.publicURL(dubbingID, ""), false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditorLatest fetches the newest editor snapshot for a project.
func (c *Client) EditorLatest(ctx context.Context, dubbingID string) (*snapshot.EditorSnapshot, error) {
	var out snapshot.EditorSnapshot
	if err := c.getJSON(ctx, c.studioURL(dubbingID, "editor/latest"), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitRender starts an asynchronous render job.
func (c *Client) SubmitRender(ctx context.Context, dubbingID string, payload *snapshot.RenderRequest) (*RenderResponse, error) {
	if payload == nil {
		return nil, services.Wrap(services.ErrValidation, "studio", "submit render", "payload is nil", nil)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal render payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.studioURL(dubbingID, "render"), bytes.NewReader(body), true)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req, "submit render")
	if err != nil {
		return nil, err
	}

	var out RenderResponse
	// Some deployments answer with a bare string; treat any non-object body
	// as an empty acknowledgement and let the caller reject the missing id.
	if err := json.Unmarshal(respBody, &out); err != nil {
		return &RenderResponse{}, nil
	}
	return &out, nil
}

// InternalMetadata fetches the status feed for a project.
func (c *Client) InternalMetadata(ctx context.Context, dubbingID string) (*InternalMetadata, error) {
	var out InternalMetadata
	if err := c.getJSON(ctx, c.studioURL(dubbingID, "internal-metadata"), true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameDubbing patches the project display name. The endpoint answers with
// an empty or literal-null body on success.
func (c *Client) RenameDubbing(ctx context.Context, dubbingID, name string) error {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("marshal rename payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.studioURL(dubbingID, "metadata"), bytes.NewReader(body), true)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	_, err = c.do(req, "rename")
	return err
}

func (c *Client) publicURL(dubbingID, suffix string) string {
	return joinURL(c.publicBase, dubbingID, suffix)
}

func (c *Client) studioURL(dubbingID, suffix string) string {
	return joinURL(c.studioBase, dubbingID, suffix)
}

func joinURL(base, dubbingID, suffix string) string {
	out := base + "/" + url.PathEscape(dubbingID)
	if suffix != "" {
		out += "/" + suffix
	}
	return out
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, studioAuth bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build studio request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if studioAuth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else {
		req.Header.Set("xi-api-key", c.apiKey)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, studioAuth bool, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, studioAuth)
	if err != nil {
		return err
	}
	body, err := c.do(req, "get")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrValidation, "studio", "decode response", endpoint, err)
	}
	return nil
}

// do executes the request and returns the body. Non-2xx responses become
// transport errors carrying the status code and body for the item log.
func (c *Client) do(req *http.Request, operation string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "studio", operation, req.URL.String(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "studio", operation, "read response body", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("%s -> %d %s: %s", req.URL.String(), resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(body)))
		return nil, services.Wrap(services.ErrTransport, "studio", operation, detail, nil)
	}
	return body, nil
}
