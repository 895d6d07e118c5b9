// Package backend talks to the remote trading REST API. It owns nothing:
// every call is a read-through of whatever the server answers, with failures
// mapped onto the gateway's typed errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "mytrade/internal/errors"
)

const maxBodyBytes = 8 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. A nil transport uses
// http.DefaultTransport.
func NewClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, token, path string) (*envelope, error) {
	return c.do(ctx, http.MethodGet, token, path, nil)
}

func (c *Client) post(ctx context.Context, token, path string, body any) (*envelope, error) {
	return c.do(ctx, http.MethodPost, token, path, body)
}

func (c *Client) put(ctx context.Context, token, path string, body any) (*envelope, error) {
	return c.do(ctx, http.MethodPut, token, path, body)
}

func (c *Client) delete(ctx context.Context, token, path string) (*envelope, error) {
	return c.do(ctx, http.MethodDelete, token, path, nil)
}

func (c *Client) do(ctx context.Context, method, token, path string, body any) (*envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.NewInternalError("encoding request body", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, apperrors.NewInternalError("building request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("%s %s: reading body", method, path), err)
	}

	return decode(resp.StatusCode, data)
}

// decode maps a response onto an envelope or a typed error.
func decode(status int, data []byte) (*envelope, error) {
	env, parseErr := parseEnvelope(data)

	if status >= 200 && status < 300 {
		if parseErr != nil {
			return nil, apperrors.NewServerError(status, "unreadable response body")
		}
		if env.success != nil && !*env.success {
			return nil, apperrors.NewServerError(status, env.messageOr("request was not successful"))
		}
		return env, nil
	}

	message := http.StatusText(status)
	if parseErr == nil {
		message = env.messageOr(message)
	}

	switch status {
	case http.StatusUnauthorized:
		return nil, apperrors.NewUnauthorizedError(message)
	case http.StatusForbidden:
		return nil, apperrors.NewForbiddenError(message)
	case http.StatusNotFound:
		return nil, apperrors.NewNotFoundError(message)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return nil, apperrors.NewConflictError(message)
	}

	if parseErr == nil && len(bytes.TrimSpace(data)) > 0 {
		return nil, apperrors.NewServerError(status, message)
	}
	return nil, apperrors.NewNetworkError(fmt.Sprintf("HTTP %d without a readable body", status), nil)
}
