package intent

import "testing"

func TestFastPathRejectsStylingWithoutValue(t *testing.T) {
	// Names a color but no concrete value: needs enhancement.
	if _, ok := FastPath("gör knappen blå", true); ok {
		t.Fatalf("expected fast-path rejection for styling term without value")
	}
	if _, ok := FastPath("increase the padding", true); ok {
		t.Fatalf("expected fast-path rejection for property without value")
	}
}

func TestFastPathAcceptsImperativeEditWithValue(t *testing.T) {
	cls, ok := FastPath("ändra padding till 16px", true)
	if !ok {
		t.Fatalf("expected fast-path acceptance")
	}
	if cls.Intent != SimpleCode {
		t.Fatalf("intent = %q, want simple_code", cls.Intent)
	}
	if cls.CodeInstruction != "ändra padding till 16px" {
		t.Fatalf("instruction = %q", cls.CodeInstruction)
	}
	if cls.Reasoning != "fast-path" {
		t.Fatalf("reasoning = %q", cls.Reasoning)
	}
}

func TestFastPathAcceptsHexColor(t *testing.T) {
	if _, ok := FastPath("set button color to #ff0000", true); !ok {
		t.Fatalf("expected fast-path acceptance for hex value")
	}
}

func TestFastPathRequiresArtifact(t *testing.T) {
	if _, ok := FastPath("ändra padding till 16px", false); ok {
		t.Fatalf("fast-path must not run without a prior artifact")
	}
}

func TestFastPathRejectsRoutingKeywords(t *testing.T) {
	for _, p := range []string{
		"sök upp öppettider och lägg in dem",
		"generera en bild på en hund",
		"vad gör den här sidan?",
	} {
		if _, ok := FastPath(p, true); ok {
			t.Fatalf("expected rejection for %q", p)
		}
	}
}

func TestFastPathAcceptsPlainEditViaPrecheck(t *testing.T) {
	// No styling vocabulary, no routing keywords, non-trivial length.
	if _, ok := FastPath("flytta logotypen till vänster i sidhuvudet", true); !ok {
		t.Fatalf("expected pre-check acceptance")
	}
}

func TestFastPathRejectsEmptyAndTiny(t *testing.T) {
	if _, ok := FastPath("   ", true); ok {
		t.Fatalf("expected rejection for blank prompt")
	}
	if _, ok := FastPath("fixa", true); ok {
		t.Fatalf("expected rejection for trivial prompt")
	}
}
