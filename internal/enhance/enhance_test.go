package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sajtmaskin/internal/contextgather"
	"sajtmaskin/internal/llmclient"
)

func TestCreativeBriefExpands(t *testing.T) {
	fake := &llmclient.FakeClient{Responses: map[string]json.RawMessage{
		"brief": json.RawMessage(`{"needsClarification":false,"enhancedPrompt":"Bygg en landningssida för ett kafé..."}`),
	}}
	v := New(fake).CreativeBrief(context.Background(), "hemsida för mitt kafé")
	if !v.WasEnhanced {
		t.Fatalf("expected enhancement")
	}
	if v.ClarifyQuestion != "" {
		t.Fatalf("unexpected clarify question %q", v.ClarifyQuestion)
	}
	if v.Instruction == "hemsida för mitt kafé" {
		t.Fatalf("instruction not rewritten")
	}
}

func TestCreativeBriefMayClarify(t *testing.T) {
	fake := &llmclient.FakeClient{Responses: map[string]json.RawMessage{
		"brief": json.RawMessage(`{"needsClarification":true,"clarifyQuestion":"Vad säljer företaget?"}`),
	}}
	v := New(fake).CreativeBrief(context.Background(), "gör en sida")
	if v.ClarifyQuestion != "Vad säljer företaget?" {
		t.Fatalf("clarify = %q", v.ClarifyQuestion)
	}
	if v.WasEnhanced {
		t.Fatalf("clarify verdict must not claim enhancement")
	}
}

func TestCreativeBriefFailsOpen(t *testing.T) {
	fake := &llmclient.FakeClient{Err: errors.New("transport down")}
	v := New(fake).CreativeBrief(context.Background(), "hemsida för mitt kafé")
	if v.WasEnhanced || v.Instruction != "hemsida för mitt kafé" {
		t.Fatalf("expected unmodified fallback, got %+v", v)
	}
}

func TestTightenUsesContextAndFailsOpen(t *testing.T) {
	code := &contextgather.CodeContext{
		RelevantFiles: []contextgather.RelevantFile{{Name: "components/header.tsx", Snippet: "<Header/>", MatchScore: 3}},
	}

	fake := &llmclient.FakeClient{Responses: map[string]json.RawMessage{
		"tighten": json.RawMessage(`{"wasEnhanced":true,"enhancedInstruction":"Sätt bakgrundsfärgen på Header i components/header.tsx till #1e293b"}`),
	}}
	v := New(fake).Tighten(context.Background(), "gör headern mörkare", code)
	if !v.WasEnhanced {
		t.Fatalf("expected enhancement")
	}

	broken := &llmclient.FakeClient{Err: errors.New("boom")}
	v = New(broken).Tighten(context.Background(), "gör headern mörkare", code)
	if v.WasEnhanced || v.Instruction != "gör headern mörkare" {
		t.Fatalf("expected unmodified fallback, got %+v", v)
	}
}

func TestTightenPassthrough(t *testing.T) {
	fake := &llmclient.FakeClient{Responses: map[string]json.RawMessage{
		"tighten": json.RawMessage(`{"wasEnhanced":false}`),
	}}
	v := New(fake).Tighten(context.Background(), "ändra padding till 16px", nil)
	if v.WasEnhanced || v.Instruction != "ändra padding till 16px" {
		t.Fatalf("expected passthrough, got %+v", v)
	}
}

func TestEnhanceSelectsStrategyByArtifact(t *testing.T) {
	fake := &llmclient.FakeClient{Responses: map[string]json.RawMessage{}}
	e := New(fake)
	e.Enhance(context.Background(), "x", true, nil)
	e.Enhance(context.Background(), "x", false, nil)
	if len(fake.Calls) != 2 || fake.Calls[0] != "tighten" || fake.Calls[1] != "brief" {
		t.Fatalf("calls = %v", fake.Calls)
	}
}
