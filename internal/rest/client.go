// Package rest is the opaque HTTP handle threaded through the state
// engine to constructed entities. The engine itself never calls it;
// entities use it for read-through remote calls.
package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client is an authenticated Discord REST client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// New creates a REST client authenticating every request with the given
// token. Bot tokens use the "Bot" authorization scheme.
func New(token, baseURL string, bot bool, logger *zap.Logger) *Client {
	tokenType := "Bearer"
	if bot {
		tokenType = "Bot"
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   tokenType,
	})

	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Do performs one API request against a path relative to the base URL.
// The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("issuing API request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}
