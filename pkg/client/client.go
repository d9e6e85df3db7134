// Package client is a thin REST client for the rolekits service, used
// by the admin CLI and the agent tool bridge. Writes issued through it
// take the service's own merge+persist+publish path, so callers are
// indistinguishable from any other writer.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/husainf4l/rolekits/internal/model"
)

type Client struct {
	http *resty.Client
}

// New constructs a Client against baseURL. token may be empty for
// endpoints that do not require authentication.
func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

type apiError struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func wrapAPIError(resp *resty.Response) error {
	if e, ok := resp.Error().(*apiError); ok && e != nil && (e.Error != "" || e.Message != "") {
		return fmt.Errorf("%s (HTTP %d)", e.text(), resp.StatusCode())
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
}

func (c *Client) CreateUser(ctx context.Context, username string, displayName *string) (*model.User, error) {
	var out model.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"username": username, "displayName": displayName}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/api/users")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, wrapAPIError(resp)
	}
	return &out, nil
}

func (c *Client) GetCV(ctx context.Context, cvID string) (*model.CV, error) {
	var out model.CV
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiError{}).
		Get("/api/cvs/" + cvID)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, wrapAPIError(resp)
	}
	return &out, nil
}

type cvList struct {
	CVs   []*model.CV `json:"cvs"`
	Count int         `json:"count"`
}

func (c *Client) ListCVs(ctx context.Context) ([]*model.CV, error) {
	var out cvList
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiError{}).
		Get("/api/cvs")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, wrapAPIError(resp)
	}
	return out.CVs, nil
}

// CreateCV creates a CV from a sparse field map. Keys follow the CV
// JSON shape; only supplied keys are set.
func (c *Client) CreateCV(ctx context.Context, fields map[string]any) (*model.CV, error) {
	var out model.CV
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(fields).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/api/cvs")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, wrapAPIError(resp)
	}
	return &out, nil
}

// UpdateCV applies a sparse patch. The map form keeps the wire-level
// distinction between an omitted key and an explicit null.
func (c *Client) UpdateCV(ctx context.Context, cvID string, patch map[string]any) (*model.CV, error) {
	var out model.CV
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(patch).
		SetResult(&out).
		SetError(&apiError{}).
		Patch("/api/cvs/" + cvID)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, wrapAPIError(resp)
	}
	return &out, nil
}

func (c *Client) DeleteCV(ctx context.Context, cvID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&apiError{}).
		Delete("/api/cvs/" + cvID)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return wrapAPIError(resp)
	}
	return nil
}
