package contextgather

import (
	"fmt"
	"sort"
	"strings"
)

// RelevantFile is one ranked match from the candidate corpus.
type RelevantFile struct {
	Name       string  `json:"name"`
	Snippet    string  `json:"snippet"`
	MatchScore float64 `json:"matchScore"`
}

// CodeContext is the gatherer's output. Request-scoped; never persisted.
type CodeContext struct {
	RelevantFiles []RelevantFile `json:"relevantFiles"`
	Summary       string         `json:"summary"`
	RoutingInfo   string         `json:"routingInfo,omitempty"`
}

// ProjectFile is a candidate file from the caller's corpus.
type ProjectFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

const (
	maxRelevantFiles = 3
	snippetRadius    = 6 // lines kept on each side of the first hit
	maxSnippetLines  = 40
)

// Gather ranks the candidate files against the hints and returns snippets
// plus a short summary. Zero matches is a valid outcome, not an error: the
// gatherer exists for enrichment, not gatekeeping.
func Gather(hints []string, prompt string, files []ProjectFile) *CodeContext {
	if len(hints) == 0 {
		hints = ExtractHints(prompt)
	}
	ctx := &CodeContext{
		RoutingInfo: fmt.Sprintf("hints=%d files=%d", len(hints), len(files)),
	}
	if len(hints) == 0 || len(files) == 0 {
		ctx.Summary = "No relevant code context found."
		return ctx
	}

	type scored struct {
		file  ProjectFile
		score float64
		hit   string
	}
	var ranked []scored
	for _, f := range files {
		lower := strings.ToLower(f.Content)
		nameLower := strings.ToLower(f.Name)
		var score float64
		firstHit := ""
		for _, h := range hints {
			hl := strings.ToLower(h)
			if hl == "" {
				continue
			}
			n := strings.Count(lower, hl)
			if n > 0 && firstHit == "" {
				firstHit = hl
			}
			score += float64(n)
			// Hint in the file name is a much stronger signal than one in
			// the body.
			if strings.Contains(nameLower, hl) {
				score += 5
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{file: f, score: score, hit: firstHit})
		}
	}
	if len(ranked) == 0 {
		ctx.Summary = "No relevant code context found."
		return ctx
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > maxRelevantFiles {
		ranked = ranked[:maxRelevantFiles]
	}

	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ctx.RelevantFiles = append(ctx.RelevantFiles, RelevantFile{
			Name:       r.file.Name,
			Snippet:    extractSnippet(r.file.Content, r.hit),
			MatchScore: r.score,
		})
		names = append(names, r.file.Name)
	}
	ctx.Summary = fmt.Sprintf("Found %d relevant file(s): %s", len(names), strings.Join(names, ", "))
	return ctx
}

// extractSnippet keeps a window of lines around the first occurrence of
// hit, so the enriched instruction carries the part that matters instead of
// the whole file.
func extractSnippet(content, hit string) string {
	lines := strings.Split(content, "\n")
	if len(lines) <= maxSnippetLines {
		return content
	}
	at := 0
	if hit != "" {
		for i, line := range lines {
			if strings.Contains(strings.ToLower(line), hit) {
				at = i
				break
			}
		}
	}
	start := at - snippetRadius
	if start < 0 {
		start = 0
	}
	end := at + snippetRadius + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
