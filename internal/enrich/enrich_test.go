package enrich

import (
	"strings"
	"testing"

	"sajtmaskin/internal/contextgather"
	"sajtmaskin/internal/media"
	"sajtmaskin/internal/websearch"
)

func TestBuildPlainWhenNoSources(t *testing.T) {
	out := Build("bygg en sida", Sources{})
	if out != "bygg en sida" {
		t.Fatalf("out = %q", out)
	}
}

func TestBuildSectionOrder(t *testing.T) {
	out := Build("instruktion", Sources{
		Code: &contextgather.CodeContext{
			Summary:       "Found 1 relevant file(s): header.tsx",
			RelevantFiles: []contextgather.RelevantFile{{Name: "header.tsx", Snippet: "<Header/>"}},
		},
		SearchResults:   []websearch.Result{{Title: "Öppettider", URL: "https://example.se/tider", Snippet: "mån-fre 9-17"}},
		MediaCatalog:    []media.Entry{{Name: "logo.png", URL: "https://cdn.example.se/p1/logo.png"}},
		GeneratedImages: []string{"https://img.example.se/hero.png"},
	})

	order := []string{
		"instruktion",
		bannerCode,
		bannerWeb,
		bannerMedia,
		bannerImages,
	}
	last := -1
	for _, want := range order {
		at := strings.Index(out, want)
		if at < 0 {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
		if at < last {
			t.Fatalf("section %q out of order in:\n%s", want, out)
		}
		last = at
	}
}

func TestBuildKeepsURLsVerbatim(t *testing.T) {
	// URLs with query strings and unicode must appear byte for byte: the
	// backend copies them into generated code literally.
	url := "https://cdn.example.se/p1/b%C3%A5t.png?v=2&size=large"
	out := Build("x", Sources{GeneratedImages: []string{url}})
	if !strings.Contains(out, url) {
		t.Fatalf("url not verbatim in:\n%s", out)
	}
}

func TestBuildDeterministic(t *testing.T) {
	src := Sources{
		MediaCatalog: []media.Entry{
			{Name: "a.png", URL: "https://x/a.png"},
			{Name: "b.png", URL: "https://x/b.png"},
		},
	}
	if Build("i", src) != Build("i", src) {
		t.Fatalf("not deterministic")
	}
}

func TestBuildSkipsEmptyCodeContext(t *testing.T) {
	out := Build("i", Sources{Code: &contextgather.CodeContext{Summary: "No relevant code context found."}})
	if strings.Contains(out, bannerCode) {
		t.Fatalf("empty code context must not emit a banner:\n%s", out)
	}
}
