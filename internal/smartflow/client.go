// Package smartflow wraps the Tata Smartflow cloud telephony HTTP API.
package smartflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"
)

const (
	defaultBaseURL   = "https://api-smartflow.tatateleservices.com"
	defaultUserAgent = "smartflow-bridge/0.1"
)

// Config controls how the provider client behaves. It replaces any ambient
// settings lookup: callers construct the client from explicit values.
type Config struct {
	BaseURL    string
	APIToken   string
	DIDNumber  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client issues outbound requests to the Smartflow API. Requests are
// blocking and bounded only by the HTTP client timeout. No retry is
// attempted here; the scheduler owns the next periodic attempt.
type Client struct {
	apiToken   string
	baseURL    string
	didNumber  string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("smartflow: API token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		apiToken:   cfg.APIToken,
		baseURL:    baseURL,
		didNumber:  cfg.DIDNumber,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// DIDNumber returns the configured outbound caller-id number.
func (c *Client) DIDNumber() string {
	return c.didNumber
}

// ClickToCall asks the provider to bridge an agent to a destination number.
func (c *Client) ClickToCall(ctx context.Context, req ClickToCallRequest) (*ClickToCallResponse, error) {
	if req.AgentNumber == "" || req.DestinationNumber == "" {
		return nil, errors.New("smartflow: agent and destination numbers required")
	}
	if req.CallerID == "" {
		req.CallerID = c.didNumber
	}
	req.Async = 1
	req.GetCallID = 1
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("smartflow: marshal click-to-call body: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/v1/click_to_call", body, false)
	if err != nil {
		return nil, err
	}
	var resp ClickToCallResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("smartflow: decode click-to-call response: %w", err)
	}
	return &resp, nil
}

// HangupCall ends the call with the given provider call id.
func (c *Client) HangupCall(ctx context.Context, callID string) (*HangupResponse, error) {
	if strings.TrimSpace(callID) == "" {
		return nil, errors.New("smartflow: call id required")
	}
	body, err := json.Marshal(HangupRequest{CallID: callID})
	if err != nil {
		return nil, fmt.Errorf("smartflow: marshal hangup body: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/v1/hangup_call", body, false)
	if err != nil {
		return nil, err
	}
	var resp HangupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("smartflow: decode hangup response: %w", err)
	}
	return &resp, nil
}

// FetchUsers pulls one page of the provider's user list. The users endpoint
// is the one Smartflow route that expects a Bearer-prefixed token.
func (c *Client) FetchUsers(ctx context.Context) ([]ProviderUserPayload, error) {
	data, err := c.invoke(ctx, http.MethodGet, "/v1/users", nil, true)
	if err != nil {
		return nil, err
	}
	var resp usersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("smartflow: decode users response: %w", err)
	}
	return resp.Data, nil
}

// FetchCallRecords pulls one page of historical call records.
func (c *Client) FetchCallRecords(ctx context.Context) ([]CallRecord, error) {
	data, err := c.invoke(ctx, http.MethodGet, "/v1/call/records", nil, false)
	if err != nil {
		return nil, err
	}
	var resp recordsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("smartflow: decode records response: %w", err)
	}
	return resp.Results, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, body []byte, bearer bool) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("smartflow: build request: %w", err)
	}
	token := c.apiToken
	if bearer {
		token = "Bearer " + token
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("provider request failed", "method", method, "path", path, "error", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("smartflow: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("smartflow: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("provider request rejected",
			"method", method, "path", path, "status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	c.logger.Debug("provider request finished",
		"method", method, "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return data, nil
}

type apiError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("smartflow: %s (status=%d)", e.Message, e.StatusCode)
	}
	if e.Detail != "" {
		return fmt.Sprintf("smartflow: %s (status=%d)", e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("smartflow: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &apiError{StatusCode: status, Detail: string(body)}
	}
	parsed.StatusCode = status
	return &parsed
}
