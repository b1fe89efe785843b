// Package client provides HTTP access to a running songscribed instance.
package client

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

	"songscribe/internal/api"
	"songscribe/internal/identify"
)

// ErrDaemonUnavailable indicates no daemon answered at the configured
// address.
var ErrDaemonUnavailable = errors.New("songscribed is not running")

// Client talks to the daemon API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the daemon listening at addr. addr may be a
// bare host:port or a full http URL.
func New(addr, token string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: base,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Process submits a batch of video references for admission.
func (c *Client) Process(ctx context.Context, urls []string) (*api.ProcessResponse, error) {
	body, err := json.Marshal(api.ProcessRequest{URLs: urls})
	if err != nil {
		return nil, err
	}
	var resp api.ProcessResponse
	if err := c.do(ctx, http.MethodPost, "/api/process", bytes.NewReader(body), &resp); err != nil {
		return &resp, err
	}
	return &resp, nil
}

// Songs lists the stored songs.
func (c *Client) Songs(ctx context.Context) (*api.SongsResponse, error) {
	var resp api.SongsResponse
	if err := c.do(ctx, http.MethodGet, "/api/songs", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Song fetches the stored artifact for one video ID.
func (c *Client) Song(ctx context.Context, videoID string) ([]byte, error) {
	if len(videoID) != identify.IDLength {
		return nil, fmt.Errorf("invalid video ID: %q", videoID)
	}
	return c.raw(ctx, "/api/song/"+videoID)
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapDialError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out != nil && len(payload) > 0 {
		// Decode even on errors so callers can report details such as
		// the rejected references in a process response.
		_ = json.Unmarshal(payload, out)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp.StatusCode, payload)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.wrapDialError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apiError(resp.StatusCode, payload)
	}
	return payload, nil
}

func (c *Client) wrapDialError(err error) error {
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w at %s: %v", ErrDaemonUnavailable, c.baseURL, err)
	}
	var urlErr interface{ Timeout() bool }
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("request to %s timed out: %w", c.baseURL, err)
	}
	return err
}

func apiError(status int, payload []byte) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return errors.New(body.Error)
		}
		if body.Message != "" {
			return errors.New(body.Message)
		}
	}
	return fmt.Errorf("daemon returned %s", http.StatusText(status))
}
