package contextgather

import (
	"strings"
	"testing"
)

func TestExtractHintsVocabularyAndQuotes(t *testing.T) {
	hints := ExtractHints(`ändra texten i "Kontakta oss" knappen i HeaderNav`)
	if len(hints) == 0 {
		t.Fatalf("expected hints")
	}
	joined := strings.ToLower(strings.Join(hints, "|"))
	for _, want := range []string{"knapp", "kontakta oss", "headernav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("hints %v missing %q", hints, want)
		}
	}
}

func TestExtractHintsCap(t *testing.T) {
	hints := ExtractHints(`knappen i menyn med bild och länk i tabellen under rubriken med pris`)
	if len(hints) > 5 {
		t.Fatalf("hints exceed cap: %v", hints)
	}
}

func TestGatherRanksByHintMatches(t *testing.T) {
	files := []ProjectFile{
		{Name: "app/page.tsx", Content: "export default function Page() { return <main/> }"},
		{Name: "components/header.tsx", Content: "export function Header() { return <button>Meny</button> }"},
	}
	ctx := Gather([]string{"header", "button"}, "", files)
	if len(ctx.RelevantFiles) == 0 {
		t.Fatalf("expected matches")
	}
	if ctx.RelevantFiles[0].Name != "components/header.tsx" {
		t.Fatalf("top match = %q", ctx.RelevantFiles[0].Name)
	}
	if ctx.RelevantFiles[0].MatchScore <= 0 {
		t.Fatalf("score = %v", ctx.RelevantFiles[0].MatchScore)
	}
	if !strings.Contains(ctx.Summary, "components/header.tsx") {
		t.Fatalf("summary = %q", ctx.Summary)
	}
}

func TestGatherZeroMatchesIsNotAnError(t *testing.T) {
	files := []ProjectFile{{Name: "a.tsx", Content: "nothing relevant"}}
	ctx := Gather([]string{"carousel"}, "", files)
	if len(ctx.RelevantFiles) != 0 {
		t.Fatalf("expected no matches")
	}
	if ctx.Summary == "" {
		t.Fatalf("summary must still be set")
	}
}

func TestGatherFallsBackToPromptHints(t *testing.T) {
	files := []ProjectFile{{Name: "components/footer.tsx", Content: "<footer>kontakt</footer>"}}
	ctx := Gather(nil, "gör sidfoten mörkare med footer länkar", files)
	if len(ctx.RelevantFiles) != 1 {
		t.Fatalf("expected footer match, got %+v", ctx.RelevantFiles)
	}
}

func TestHasUIVocabulary(t *testing.T) {
	if !HasUIVocabulary("ändra knappen") {
		t.Fatalf("expected vocabulary hit")
	}
	if HasUIVocabulary("hjälp mig") {
		t.Fatalf("expected no vocabulary hit")
	}
}
