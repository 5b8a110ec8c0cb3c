// Package apiclient is the thin JSON transport the reconciliation core
// talks through. Failures are shaped so faults.Classify can discriminate
// connection loss, timeouts, auth rejections, and server errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"fintrack/pkg/config"
	errs "fintrack/pkg/errors"
	"fintrack/pkg/logger"
)

type Client struct {
	client  *http.Client
	baseURL string
	token   string
	logger  logger.Logger
}

func New(cfg config.APIConfig, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		logger:  log,
	}
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// errorEnvelope is the backend's error body. Either field may carry the
// machine-readable code (e.g. INSUFFICIENT_CREDITS).
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Connection-level failures (refused, DNS) mean the transport is
		// entirely down; batch callers use the sentinel to stop early.
		// Timeouts keep their own identity for classification.
		var opErr *net.OpError
		if errors.As(err, &opErr) && !opErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", errs.ErrTransportUnavailable, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.RawMessage(data), nil
	}

	c.logger.Warn("Request rejected", map[string]interface{}{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	})

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errs.ErrUnauthorized
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil {
		if envelope.Error != "" {
			return nil, fmt.Errorf("%s", envelope.Error)
		}
		if envelope.Message != "" {
			return nil, fmt.Errorf("%s", envelope.Message)
		}
	}

	return nil, fmt.Errorf("request failed: %d", resp.StatusCode)
}
