package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/twinlab/twin/internal/domain"
)

// Client talks to the hosted blob store. All failures that look like
// connectivity map to domain.ErrRemoteUnavailable so callers can fall
// back to the local cache.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a remote store client. An empty baseURL yields a
// nil client, which the service treats as permanently offline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// authResult is the remote response for login and register.
type authResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Login authenticates and returns the raw user payload.
func (c *Client) Login(ctx context.Context, username, password string) ([]byte, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	res, err := c.postJSON(ctx, "/api/auth/login", body)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, domain.ErrBadCredentials
	}
	if len(res.Data) == 0 {
		return nil, domain.ErrMalformedPayload
	}
	return res.Data, nil
}

// Register creates an account. The returned message distinguishes
// immediate success from "verification required".
func (c *Client) Register(ctx context.Context, name, email, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"username": username,
		"password": password,
	})
	res, err := c.postJSON(ctx, "/api/auth/register", body)
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("register rejected: %s", res.Message)
	}
	return res.Message, nil
}

// FetchUserData retrieves the full payload for a user.
func (c *Client) FetchUserData(ctx context.Context, username string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/users/"+username+"/data", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// UpsertUserData writes the full payload for a user. Idempotent.
func (c *Client) UpsertUserData(ctx context.Context, username string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/api/users/"+username+"/data", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte) (*authResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}

	var res authResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return &res, nil
}
