package intent

import (
	"regexp"
	"strings"
)

// Fast-path length bounds. Tuned values; keep them as-is.
const (
	// fastPathMinLen is the floor for the routing pre-check branch: very
	// short prompts are too ambiguous to skip classification.
	fastPathMinLen = 12
	// fastPathMaxLen is the ceiling for the imperative-edit branch.
	fastPathMaxLen = 120
)

// stylingTerms are styling properties, Swedish and English forms mixed
// because the product's users write both. A prompt that names one of these
// without a concrete value needs enhancement, not a direct passthrough.
// Named colors count as styling references too: "gör knappen blå" names a
// color without giving a value the generator can apply.
// Trailing \b misfires after Swedish å (regexp word boundaries are ASCII),
// so the terms ending in å are matched without one.
var stylingTerms = regexp.MustCompile(`(?i)\b(border|padding|margin|colou?r|färg|font|typsnitt|size|storlek|radius|rund(ad|ning)?|shadow|skugga|spacing|gap|width|bredd|height|höjd|background|bakgrund|opacity|röd|grön|gul|svart|vit|rosa|lila|brun|blue|red|green|yellow|black|white|gr[ae]y|pink|purple|orange|brown)\b|\b(blå|grå)`)

// concreteValue matches values the generator can apply verbatim: a number
// with a CSS unit, a hex color, or functional color notation. Named colors
// ("blå", "red") deliberately do not count.
var concreteValue = regexp.MustCompile(`(?i)(\b\d+(\.\d+)?(px|rem|em|%|vh|vw|pt|s|ms)\b|#[0-9a-f]{3,8}\b|\b(rgba?|hsla?|oklch)\()`)

// imperativeEdit matches a simple edit command: verb + target + the rest.
// The concrete-value requirement is checked separately.
var imperativeEdit = regexp.MustCompile(`(?i)^\s*(ändra|byt|sätt|öka|minska|gör|ta bort|change|set|update|make|increase|decrease|remove)\b\s+\S+`)

// routingKeywords suggest the prompt wants something beyond a direct code
// edit (search, images, questions) and therefore needs real classification.
var routingKeywords = regexp.MustCompile(`(?i)\b(sök|söka|search|googla|bild|bilder|image|images|foto|photo|video|nyheter|news|varför|hur|vad|why|how|what)\b|\?`)

// FastPath decides whether prompt can bypass the classifier entirely.
// Only prompts refining an existing artifact qualify. On success it
// synthesizes the Classification the classifier would have produced.
func FastPath(prompt string, hasArtifact bool) (*Classification, bool) {
	if !hasArtifact {
		return nil, false
	}
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return nil, false
	}

	// Styling property without a concrete value: "gör knappen blå" knows
	// what to touch but not what to set it to. Force full classification
	// so enhancement can make the instruction actionable.
	if stylingTerms.MatchString(trimmed) && !concreteValue.MatchString(trimmed) {
		return nil, false
	}

	// Imperative edit with a concrete value under the ceiling:
	// "ändra padding till 16px".
	if len(trimmed) <= fastPathMaxLen &&
		imperativeEdit.MatchString(trimmed) && concreteValue.MatchString(trimmed) {
		return synthesize(trimmed), true
	}

	// Cheap routing pre-check: nothing in the prompt calls for search,
	// media or conversation, and it is long enough to be unambiguous.
	if len(trimmed) >= fastPathMinLen && !routingKeywords.MatchString(trimmed) {
		return synthesize(trimmed), true
	}

	return nil, false
}

func synthesize(prompt string) *Classification {
	return &Classification{
		Intent:          SimpleCode,
		Confidence:      1,
		CodeInstruction: prompt,
		Reasoning:       "fast-path",
	}
}
