// Package imagegen generates images from text prompts through an
// OpenAI-compatible images endpoint. The pipeline asks for images when a
// request routes to the image intents; the resulting URLs are handed to
// the prompt enrichment step verbatim.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-image-1"
	DefaultSize    = "1024x1024"
	DefaultQuality = "high"
)

// Image is one generated image. Exactly one of URL and Data is set,
// depending on what the endpoint returns.
type Image struct {
	URL  string
	Data []byte
}

// Generator produces images for a prompt. Implementations must honor the
// context deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string, n int) ([]Image, error)
}

// Client is the HTTP implementation of Generator.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	size    string
	quality string
	http    *http.Client
}

type Option func(*Client)

func WithModel(model string) Option   { return func(c *Client) { c.model = model } }
func WithSize(size string) Option     { return func(c *Client) { c.size = size } }
func WithQuality(q string) Option     { return func(c *Client) { c.quality = q } }
func WithBaseURL(base string) Option  { return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") } }
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		model:   DefaultModel,
		size:    DefaultSize,
		quality: DefaultQuality,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
}

type generateResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests n images for the prompt. n is clamped to [1, 4].
func (c *Client) Generate(ctx context.Context, prompt string, n int) ([]Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("imagegen: empty prompt")
	}
	if n < 1 {
		n = 1
	}
	if n > 4 {
		n = 4
	}

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		N:       n,
		Size:    c.size,
		Quality: c.quality,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &out) == nil && out.Error != nil {
			return nil, fmt.Errorf("imagegen: status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return nil, fmt.Errorf("imagegen: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("imagegen: decode: %w", err)
	}

	images := make([]Image, 0, len(out.Data))
	for _, d := range out.Data {
		switch {
		case d.URL != "":
			images = append(images, Image{URL: d.URL})
		case d.B64JSON != "":
			raw, err := base64.StdEncoding.DecodeString(d.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("imagegen: decode image data: %w", err)
			}
			images = append(images, Image{Data: raw})
		}
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("imagegen: response carried no images")
	}
	return images, nil
}
