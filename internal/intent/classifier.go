package intent

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"sajtmaskin/internal/llmclient"
	"sajtmaskin/internal/util/jsonutil"
)

// classifyTimeout bounds the classification call. Generous on purpose: a
// slow verdict is still cheaper than a wrong one, and the fallback below
// keeps the request alive either way.
const classifyTimeout = 30 * time.Second

// Classifier asks the model which branch a prompt belongs to.
type Classifier struct {
	llm llmclient.LLMClient
}

func NewClassifier(llm llmclient.LLMClient) *Classifier {
	return &Classifier{llm: llm}
}

type classifyInput struct {
	Prompt      string `json:"prompt"`
	HasArtifact bool   `json:"hasArtifact"`
}

// Classify returns a Classification for the prompt. It never fails the
// request: on timeout or transport error it substitutes a degraded verdict
// (simple_code at 0.6 confidence) and logs the cause.
func (c *Classifier) Classify(ctx context.Context, prompt string, hasArtifact bool) *Classification {
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()
	ctx = llmclient.WithPhase(ctx, "classify")

	raw, err := c.llm.GenerateJSON(ctx, classifyPrompt, classifyInput{
		Prompt:      prompt,
		HasArtifact: hasArtifact,
	})
	if err != nil {
		log.Printf("intent: classification failed, using fallback: %v", err)
		return Fallback()
	}

	var out Classification
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		log.Printf("intent: classification returned bad JSON, using fallback: %v", err)
		return Fallback()
	}
	if !Valid(out.Intent) {
		log.Printf("intent: classifier returned unknown intent %q, using fallback", out.Intent)
		return Fallback()
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return &out
}

// Fallback is the degraded verdict substituted when classification cannot
// be completed. simple_code at 0.6 keeps the request on the plain code
// path without tripping the low-confidence clarify override.
func Fallback() *Classification {
	return &Classification{
		Intent:     SimpleCode,
		Confidence: 0.6,
		Reasoning:  "fallback",
	}
}

var classifyPrompt = buildClassifyPrompt()

func buildClassifyPrompt() string {
	var buf bytes.Buffer
	section(&buf, "PURPOSE",
		"Classify a website-builder user prompt into exactly one intent so the "+
			"pipeline can route it. The prompt may be Swedish or English.")
	section(&buf, "BACKGROUND",
		"hasArtifact tells you whether generated code already exists for this "+
			"chat. Refinements of existing code lean toward simple_code or "+
			"needs_code_context; brand-new sites lean toward simple_code, "+
			"image_gen or web_search variants.")
	section(&buf, "OUTPUT", strings.TrimRight(outputFields(), "\n"))
	section(&buf, "CONSTRAINTS", strings.Join([]string{
		"- intent must be one of: simple_code, needs_code_context, image_gen, image_and_code, web_search, web_and_code, clarify, chat_response.",
		"- Populate only the fields that belong to the chosen intent; leave the rest out.",
		"- confidence is your own certainty in [0,1], not the user's.",
		"- contextHints are short identifiers of UI elements or files the prompt refers to, most relevant first.",
		"- For clarify, clarifyQuestion must be a single question in the prompt's language.",
	}, "\n"))
	section(&buf, "OUTPUT_FORMAT", "JSON object only. No markdown.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func outputFields() string {
	fields := []struct {
		name, typ, req, desc string
	}{
		{"intent", "string", "required", "one of the eight intents"},
		{"confidence", "number", "required", "certainty in [0,1]"},
		{"codeInstruction", "string", "optional", "actionable instruction for the code generator"},
		{"imagePrompt", "string", "optional", "prompt for the image generator"},
		{"searchQuery", "string", "optional", "query for web search"},
		{"contextHints", "[]string", "optional", "UI elements / identifiers to look up in existing code"},
		{"clarifyQuestion", "string", "optional", "question to ask the user"},
		{"chatResponse", "string", "optional", "conversational reply when no generation is needed"},
		{"reasoning", "string", "required", "one-sentence trace of the decision"},
	}
	var buf strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", f.name, f.typ, f.req, f.desc)
	}
	return buf.String()
}

func section(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
