package contextgather

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const maxHints = 5

// uiVocabulary are UI-element nouns in both languages the product sees.
// Shared with the clarify heuristic: a prompt naming one of these is
// plausibly about something that exists in the code.
var uiVocabulary = []string{
	"button", "knapp", "knappen",
	"header", "sidhuvud", "rubrik", "rubriken", "title",
	"footer", "sidfot",
	"menu", "meny", "menyn", "navbar",
	"form", "formulär", "formuläret", "input",
	"link", "länk", "länken",
	"image", "bild", "bilden", "logo", "logotyp", "logotypen",
	"card", "kort", "kortet",
	"hero", "section", "sektion", "sektionen",
	"table", "tabell", "tabellen",
	"price", "pris", "priser",
	"text", "texten", "font",
}

var (
	quotedRe     = regexp.MustCompile(`"([^"]{2,60})"|'([^']{2,60})'|”([^”]{2,60})”`)
	identifierRe = regexp.MustCompile(`\b[a-z]+[A-Z][A-Za-z]*\b|\b[A-Z][a-z]+[A-Z][A-Za-z]*\b`)

	// Extraction is pure and prompts repeat across retries and repair
	// rounds, so memoize the recent ones.
	hintMemo, _ = lru.New[string, []string](128)
)

// ExtractHints pulls lookup hints from a raw prompt when the classifier
// supplied none: UI-element nouns, quoted substrings, and identifier-cased
// tokens, in that priority order, capped at maxHints.
func ExtractHints(prompt string) []string {
	if cached, ok := hintMemo.Get(prompt); ok {
		return cached
	}

	var hints []string
	seen := map[string]bool{}
	add := func(h string) {
		h = strings.TrimSpace(h)
		key := strings.ToLower(h)
		if h == "" || seen[key] || len(hints) >= maxHints {
			return
		}
		seen[key] = true
		hints = append(hints, h)
	}

	lower := strings.ToLower(prompt)
	for _, w := range uiVocabulary {
		if !strings.Contains(lower, w) {
			continue
		}
		// The vocabulary carries inflected forms of the same noun
		// ("knapp", "knappen"); one of them is enough.
		dup := false
		for k := range seen {
			if strings.HasPrefix(w, k) || strings.HasPrefix(k, w) {
				dup = true
				break
			}
		}
		if !dup {
			add(w)
		}
	}
	for _, m := range quotedRe.FindAllStringSubmatch(prompt, -1) {
		for _, g := range m[1:] {
			if g != "" {
				add(g)
			}
		}
	}
	for _, id := range identifierRe.FindAllString(prompt, -1) {
		add(id)
	}

	hintMemo.Add(prompt, hints)
	return hints
}

// HasUIVocabulary reports whether the prompt names any known UI element.
// Used to decide whether a clarify intent is worth a context lookup at all:
// short or vague prompts with no UI vocabulary skip gathering entirely.
func HasUIVocabulary(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, w := range uiVocabulary {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
