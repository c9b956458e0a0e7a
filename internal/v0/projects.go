package v0

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// ListProjects fetches every project in the workspace.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects", nil)
	if err != nil {
		return nil, err
	}
	c.headers(req, true)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("v0: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("v0: list projects: status %d", resp.StatusCode)
	}

	var out struct {
		Data []Project `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("v0: decode projects: %w", err)
	}
	return out.Data, nil
}

// GetProject fetches one project with its chats and latest versions.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects/"+projectID, nil)
	if err != nil {
		return nil, err
	}
	c.headers(req, true)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("v0: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("v0: get project %s: status %d", projectID, resp.StatusCode)
	}

	var p Project
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("v0: decode project: %w", err)
	}
	return &p, nil
}

// DeleteProject removes a project permanently. The platform answers 200
// with {"deleted": true} on success.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/projects/"+projectID, nil)
	if err != nil {
		return err
	}
	c.headers(req, true)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("v0: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("v0: delete project %s: status %d", projectID, resp.StatusCode)
	}

	var out struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Deleted {
		return fmt.Errorf("v0: delete project %s: not confirmed", projectID)
	}
	return nil
}

// ChooseChatAndVersion picks the chat/version pair to export, preferring
// chats whose latest version completed.
func ChooseChatAndVersion(p *Project) (chatID, versionID string, ok bool) {
	pick := func(completedOnly bool) (string, string, bool) {
		for _, ch := range p.Chats {
			if ch.LatestVersion == nil {
				continue
			}
			if completedOnly && ch.LatestVersion.Status != "completed" {
				continue
			}
			return ch.ID, ch.LatestVersion.ID, true
		}
		return "", "", false
	}
	if c, v, found := pick(true); found {
		return c, v, true
	}
	return pick(false)
}

// DownloadVersionZip streams the zip export of one version. The request
// deliberately carries no JSON content type: the response is binary.
func (c *Client) DownloadVersionZip(ctx context.Context, chatID, versionID string) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/chats/%s/versions/%s/download?format=zip&includeDefaultFiles=true",
		c.baseURL, chatID, versionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.headers(req, false)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("v0: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("v0: download version: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a project name into a filesystem/export-safe slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "project"
	}
	return s
}
