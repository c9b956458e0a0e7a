// Package enhance rewrites raw user prompts into instructions the
// generation backend can act on. Two mutually exclusive strategies exist:
// a creative-brief expander for net-new generation and a semantic tightener
// for refinements of existing output. Both fail open: a broken enhancement
// call never aborts the request, the pre-enhancement text is used instead.
package enhance

import (
	"context"
	"log"
	"strings"
	"time"

	"sajtmaskin/internal/contextgather"
	"sajtmaskin/internal/llmclient"
	"sajtmaskin/internal/util/jsonutil"
)

const (
	enhanceTimeout = 30 * time.Second

	// tightenMaxLen is the ceiling above which a refinement prompt is
	// passed through untouched; long prompts are already specific.
	tightenMaxLen = 400
)

// Verdict is the outcome of either strategy.
type Verdict struct {
	Instruction string
	WasEnhanced bool
	// ClarifyQuestion, when set, short-circuits the whole pipeline: the
	// question goes back to the caller and the generation backend is never
	// reached.
	ClarifyQuestion string
}

// Enhancer runs the strategy appropriate for the request.
type Enhancer struct {
	llm llmclient.LLMClient
}

func New(llm llmclient.LLMClient) *Enhancer {
	return &Enhancer{llm: llm}
}

// Enhance selects the strategy by presence of a prior artifact.
func (e *Enhancer) Enhance(ctx context.Context, prompt string, hasArtifact bool, code *contextgather.CodeContext) *Verdict {
	if hasArtifact {
		return e.Tighten(ctx, prompt, code)
	}
	return e.CreativeBrief(ctx, prompt)
}

type briefOutput struct {
	NeedsClarification bool   `json:"needsClarification"`
	ClarifyQuestion    string `json:"clarifyQuestion"`
	EnhancedPrompt     string `json:"enhancedPrompt"`
}

// CreativeBrief expands a short prompt for net-new generation into a
// structured brief, or asks for clarification instead.
func (e *Enhancer) CreativeBrief(ctx context.Context, prompt string) *Verdict {
	ctx, cancel := context.WithTimeout(ctx, enhanceTimeout)
	defer cancel()
	ctx = llmclient.WithPhase(ctx, "brief")

	raw, err := e.llm.GenerateJSON(ctx, briefPrompt, map[string]string{"prompt": prompt})
	if err != nil {
		log.Printf("enhance: creative brief failed, using original prompt: %v", err)
		return &Verdict{Instruction: prompt}
	}
	var out briefOutput
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		log.Printf("enhance: creative brief returned bad JSON, using original prompt: %v", err)
		return &Verdict{Instruction: prompt}
	}
	if out.NeedsClarification && strings.TrimSpace(out.ClarifyQuestion) != "" {
		return &Verdict{Instruction: prompt, ClarifyQuestion: strings.TrimSpace(out.ClarifyQuestion)}
	}
	if enhanced := strings.TrimSpace(out.EnhancedPrompt); enhanced != "" {
		return &Verdict{Instruction: enhanced, WasEnhanced: true}
	}
	return &Verdict{Instruction: prompt}
}

type tightenOutput struct {
	WasEnhanced         bool   `json:"wasEnhanced"`
	EnhancedInstruction string `json:"enhancedInstruction"`
}

// Tighten rewrites a vague refinement instruction into a concrete,
// technically actionable one, grounded in gathered code context. Returns
// the prompt unchanged when enhancement would not materially improve it.
func (e *Enhancer) Tighten(ctx context.Context, prompt string, code *contextgather.CodeContext) *Verdict {
	if len(prompt) > tightenMaxLen {
		return &Verdict{Instruction: prompt}
	}
	ctx, cancel := context.WithTimeout(ctx, enhanceTimeout)
	defer cancel()
	ctx = llmclient.WithPhase(ctx, "tighten")

	input := map[string]any{"prompt": prompt}
	if code != nil && len(code.RelevantFiles) > 0 {
		input["codeContext"] = code
	}
	raw, err := e.llm.GenerateJSON(ctx, tightenPrompt, input)
	if err != nil {
		log.Printf("enhance: tighten failed, using original prompt: %v", err)
		return &Verdict{Instruction: prompt}
	}
	var out tightenOutput
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		log.Printf("enhance: tighten returned bad JSON, using original prompt: %v", err)
		return &Verdict{Instruction: prompt}
	}
	if out.WasEnhanced && strings.TrimSpace(out.EnhancedInstruction) != "" {
		return &Verdict{Instruction: strings.TrimSpace(out.EnhancedInstruction), WasEnhanced: true}
	}
	return &Verdict{Instruction: prompt}
}
