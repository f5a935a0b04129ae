package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/traska-space-race/game/engine"
	"github.com/wricardo/traska-space-race/game/service"
)

// Client drives one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type restartResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

// CreateSession starts a session and remembers its ID
func (c *Client) CreateSession(ctx context.Context, configID string, seed uint64) (*service.SessionInfo, error) {
	var info service.SessionInfo
	opts := service.CreateOptions{ConfigID: configID, Seed: seed}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", opts, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// GetSession loads the session, its rules and its state
func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

// Move flies the ship to target. Rule rejections come back as a result, not an error.
func (c *Client) Move(ctx context.Context, target engine.Position) (*service.MoveResult, error) {
	var result service.MoveResult
	body := map[string]int{"x": target.X, "y": target.Y}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/move"), body, &result); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	return &result, nil
}

// Restart puts the ship back at the start of the same map
func (c *Client) Restart(ctx context.Context) (*engine.GameState, error) {
	var resp restartResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/restart"), nil, &resp); err != nil {
		return nil, fmt.Errorf("restart: %w", err)
	}
	return resp.State, nil
}

// Complete records the finished run under name
func (c *Client) Complete(ctx context.Context, name string) (*service.CompletionResult, error) {
	var result service.CompletionResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/complete"), map[string]string{"name": name}, &result); err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
