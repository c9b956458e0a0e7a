// Package v0 is the client for the v0 Platform API, the generation backend
// behind the pipeline. Given an instruction it produces code, files and a
// hosted demo; the pipeline treats everything else about it as opaque.
package v0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.v0.dev/v1"

// Client talks to the platform with bearer auth. JSON on every request
// except the binary zip download.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithBase(DefaultBaseURL, apiKey)
}

func NewClientWithBase(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// Generation calls are slow; the caller's context carries the real
		// deadline, this is only a safety net.
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) headers(req *http.Request, jsonRequest bool) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if jsonRequest {
		req.Header.Set("Content-Type", "application/json")
	}
}

// CreateChatRequest starts a new generation.
type CreateChatRequest struct {
	Message   string `json:"message"`
	System    string `json:"system,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Model     string `json:"modelId,omitempty"`
}

// CreateChat generates a brand-new artifact from the instruction.
func (c *Client) CreateChat(ctx context.Context, req CreateChatRequest) (*Generation, error) {
	return c.postChat(ctx, c.baseURL+"/chats", req)
}

// SendMessage refines an existing chat: the platform applies the
// instruction on top of the chat's current code. Also used for the repair
// call.
func (c *Client) SendMessage(ctx context.Context, chatID, message string) (*Generation, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, fmt.Errorf("v0: chat id is required")
	}
	return c.postChat(ctx, fmt.Sprintf("%s/chats/%s/messages", c.baseURL, chatID), map[string]string{
		"message": message,
	})
}

func (c *Client) postChat(ctx context.Context, url string, body any) (*Generation, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	c.headers(req, true)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("v0: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("v0: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("v0: decode chat: %w", err)
	}
	return chat.toGeneration(), nil
}

// StreamChat starts a generation with a streamed response. The returned
// body carries the event-frame wire format; the caller owns closing it and
// feeds it to the stream decoder.
func (c *Client) StreamChat(ctx context.Context, req CreateChatRequest) (io.ReadCloser, error) {
	body := struct {
		CreateChatRequest
		ResponseMode string `json:"responseMode"`
	}{CreateChatRequest: req, ResponseMode: "experimental_stream"}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chats", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	c.headers(httpReq, true)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("v0: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("v0: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp.Body, nil
}
