package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/neurova/neurova/internal/analytics"
	"github.com/neurova/neurova/internal/sessions"
)

// Client calls a remote session data service and decodes its response
// envelope. It satisfies the analytics.Loader interface, so the aggregation
// engine can run against a remote deployment instead of the local store.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// envelope is the wire shape of every response: a status label, a human
// message, and an optional payload.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient creates a session data client. apiKey may be empty for
// deployments without authentication on read endpoints.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// do sends a request, decodes the envelope, and converts every non-2xx
// response into a DataUnavailableError carrying the remote status and
// message unchanged.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, analytics.NewDataUnavailableError("Error", "failed to reach session data service", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, analytics.NewDataUnavailableError("Error", "failed to decode response envelope", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Session data service returned an error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("statusCode", resp.StatusCode),
			zap.String("status", env.Status),
			zap.String("message", env.Message))
		return nil, analytics.NewDataUnavailableError(env.Status, env.Message, nil)
	}

	return &env, nil
}

// ListSessionData retrieves all sessions for a user, ascending by session
// number, with measurements nested.
func (c *Client) ListSessionData(ctx context.Context, userID string) ([]*sessions.Session, error) {
	query := url.Values{}
	query.Set("user_id", userID)

	env, err := c.do(ctx, http.MethodGet, "/sessions", query, nil)
	if err != nil {
		return nil, err
	}

	result := []*sessions.Session{}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return nil, analytics.NewDataUnavailableError("Error", "failed to decode session data", err)
		}
	}
	return result, nil
}

// LoadSessions satisfies analytics.Loader.
func (c *Client) LoadSessions(ctx context.Context, userID string) ([]*sessions.Session, error) {
	return c.ListSessionData(ctx, userID)
}

// ReplaceSessionData submits a measurement batch for one session number,
// replacing any prior batch stored under it.
func (c *Client) ReplaceSessionData(ctx context.Context, req *sessions.CreateSessionDataRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/sessions", nil, req)
	return err
}

// DeleteSessionData deletes one session. The returned message distinguishes
// an actual deletion from a no-op on a session that never existed; both are
// success on the wire.
func (c *Client) DeleteSessionData(ctx context.Context, req *sessions.DeleteSessionDataRequest) (string, error) {
	env, err := c.do(ctx, http.MethodDelete, "/sessions", nil, req)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// DeleteAllSessionData deletes every session the user owns.
func (c *Client) DeleteAllSessionData(ctx context.Context, req *sessions.DeleteAllDataRequest) error {
	_, err := c.do(ctx, http.MethodDelete, "/sessions/all", nil, req)
	return err
}
