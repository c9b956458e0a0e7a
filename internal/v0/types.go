package v0

// File is one generated source file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Generation is the projection of a chat response the pipeline cares
// about. It may be replaced wholesale by a repaired generation.
type Generation struct {
	ChatID    string `json:"chatId"`
	VersionID string `json:"versionId"`
	DemoURL   string `json:"demoUrl"`
	Model     string `json:"model"`
	Code      string `json:"code"`
	Files     []File `json:"files"`
}

// chatResponse mirrors the platform's chat payload. Identifiers drift
// between top level and latestVersion, so both are read.
type chatResponse struct {
	ID      string `json:"id"`
	Demo    string `json:"demo"`
	DemoURL string `json:"demoUrl"`
	Text    string `json:"text"`
	Files   []File `json:"files"`

	LatestVersion struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		DemoURL string `json:"demoUrl"`
		Files   []File `json:"files"`
	} `json:"latestVersion"`

	ModelConfiguration struct {
		Model string `json:"model"`
	} `json:"modelConfiguration"`
}

func (c *chatResponse) toGeneration() *Generation {
	g := &Generation{
		ChatID:    c.ID,
		VersionID: c.LatestVersion.ID,
		DemoURL:   c.DemoURL,
		Model:     c.ModelConfiguration.Model,
		Code:      c.Text,
		Files:     c.Files,
	}
	if g.DemoURL == "" {
		g.DemoURL = c.Demo
	}
	if g.DemoURL == "" {
		g.DemoURL = c.LatestVersion.DemoURL
	}
	if len(g.Files) == 0 {
		g.Files = c.LatestVersion.Files
	}
	return g
}

// Project is one workspace project as listed by the platform.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Privacy   string `json:"privacy"`
	CreatedAt string `json:"createdAt"`

	Chats []struct {
		ID            string `json:"id"`
		LatestVersion *struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"latestVersion"`
	} `json:"chats"`
}
