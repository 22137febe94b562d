// Package client talks to a running rollcall server over its HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

const defaultTimeout = 10 * time.Second

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New returns a client for the server at baseURL. Requests are not retried:
// a repeated scan would toggle the badge a second time.
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc, logger: logger}
}

type scanBody struct {
	Tag      string `json:"tag,omitempty"`
	TagID    string `json:"tag_id,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	Signal   *int   `json:"signal,omitempty"`
	Battery  *int   `json:"battery,omitempty"`
}

func (c *Client) Scan(ctx context.Context, req types.ScanRequest) (types.ScanResult, error) {
	var out types.ScanResult
	body := scanBody{Tag: req.Tag, TagID: req.TagID, DeviceID: req.DeviceID, Signal: req.Signal, Battery: req.Battery}
	err := c.do(c.http.R().SetContext(ctx).SetBody(body), "POST", "/v1/scans", &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req types.RegisterRequest) (types.RegisterResult, error) {
	var out types.RegisterResult
	err := c.do(c.http.R().SetContext(ctx).SetBody(req), "POST", "/v1/persons", &out)
	return out, err
}

// Report fetches the daily report for [start, end]; blank dates default to
// today on the server.
func (c *Client) Report(ctx context.Context, start, end string, includeUnregistered bool) (types.Report, error) {
	r := c.http.R().SetContext(ctx)
	if start != "" {
		r.SetQueryParam("start_date", start)
	}
	if end != "" {
		r.SetQueryParam("end_date", end)
	}
	if includeUnregistered {
		r.SetQueryParam("include_unregistered", "true")
	}
	var out types.Report
	err := c.do(r, "GET", "/v1/reports/daily", &out)
	return out, err
}

func (c *Client) Updates(ctx context.Context, lastID int64) (types.PollResult, error) {
	var out types.PollResult
	r := c.http.R().SetContext(ctx).SetQueryParam("last_id", strconv.FormatInt(lastID, 10))
	err := c.do(r, "GET", "/v1/scans/updates", &out)
	return out, err
}

func (c *Client) do(r *resty.Request, method, path string, out any) error {
	var env envelope
	resp, err := r.SetResult(&env).SetError(&env).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode(), Code: "unexpected_response", Message: resp.Status()}
		if env.Error != nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		c.logger.Debug("rollcall api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", apiErr.Status),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
