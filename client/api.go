package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	chat "github.com/example/terminal-chat/domain/chat"
)

// RestClient talks to the broker's HTTP contract: room administration and
// token minting.
type RestClient struct {
	baseURL string
	http    *http.Client
}

// NewRestClient creates a REST client for the given broker base URL,
// e.g. "http://localhost:3001".
func NewRestClient(baseURL string) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// GetToken mints a fresh session token for the username. Tokens are cheap;
// callers mint a new one per connection.
func (c *RestClient) GetToken(ctx context.Context, username string) (string, error) {
	var token string
	err := c.getJSON(ctx, "/auth/tokens/"+url.PathEscape(username), &token)
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return token, nil
}

// ListRooms returns the names of all rooms, oldest first.
func (c *RestClient) ListRooms(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/chatrooms", &names); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return names, nil
}

// CreateRoom creates a room and returns its name. A duplicate name is
// reported as an error carrying the server's message.
func (c *RestClient) CreateRoom(ctx context.Context, name string) (string, error) {
	body, err := json.Marshal(map[string]string{"roomName": name})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chatrooms", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create room: %s", readErrorMessage(resp))
	}

	var created string
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("create room: decode response: %w", err)
	}
	return created, nil
}

// History fetches the recent messages of a room, oldest first.
func (c *RestClient) History(ctx context.Context, room string) ([]chat.Message, error) {
	var messages []chat.Message
	path := "/chatrooms/" + url.PathEscape(room) + "/messages"
	if err := c.getJSON(ctx, path, &messages); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return messages, nil
}

func (c *RestClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", readErrorMessage(resp))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readErrorMessage extracts the error shape from a non-2xx response,
// falling back to the status line.
func readErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return resp.Status
}
