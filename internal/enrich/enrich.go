// Package enrich merges the enhanced instruction with every gathered side
// channel into one instruction block. The section grammar is fixed: the
// generation backend locates snippets and URLs by banner, and it copies
// URLs into generated code literally, so nothing here may re-encode them.
package enrich

import (
	"fmt"
	"strings"

	"sajtmaskin/internal/contextgather"
	"sajtmaskin/internal/media"
	"sajtmaskin/internal/websearch"
)

// Section banners. Changing these breaks the backend's reference parser.
const (
	bannerCode   = "=== EXISTING CODE CONTEXT ==="
	bannerWeb    = "=== WEB SEARCH CONTEXT ==="
	bannerMedia  = "=== MEDIA LIBRARY (use these exact URLs) ==="
	bannerImages = "=== GENERATED IMAGES (use these exact URLs) ==="
	bannerEnd    = "=== END CONTEXT ==="
)

// Sources holds the optional side-channel outputs for one request.
type Sources struct {
	Code            *contextgather.CodeContext
	SearchResults   []websearch.Result
	MediaCatalog    []media.Entry
	GeneratedImages []string
}

// Build is pure and deterministic: same inputs, same instruction, in the
// fixed order original -> code -> web -> media -> generated images.
// Empty sources contribute nothing, not even their banner.
func Build(instruction string, src Sources) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(instruction))

	if src.Code != nil && len(src.Code.RelevantFiles) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bannerCode)
		b.WriteString("\n")
		b.WriteString(src.Code.Summary)
		for _, f := range src.Code.RelevantFiles {
			fmt.Fprintf(&b, "\n\n--- %s ---\n%s", f.Name, strings.TrimRight(f.Snippet, "\n"))
		}
		b.WriteString("\n")
		b.WriteString(bannerEnd)
	}

	if len(src.SearchResults) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bannerWeb)
		for i, r := range src.SearchResults {
			fmt.Fprintf(&b, "\n%d. %s\n   %s\n   %s", i+1, r.Title, r.URL, r.Snippet)
		}
		b.WriteString("\n")
		b.WriteString(bannerEnd)
	}

	if len(src.MediaCatalog) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bannerMedia)
		for _, e := range src.MediaCatalog {
			fmt.Fprintf(&b, "\n- %s: %s", e.Name, e.URL)
		}
		b.WriteString("\n")
		b.WriteString(bannerEnd)
	}

	if len(src.GeneratedImages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bannerImages)
		for _, u := range src.GeneratedImages {
			fmt.Fprintf(&b, "\n- %s", u)
		}
		b.WriteString("\n")
		b.WriteString(bannerEnd)
	}

	return b.String()
}
