package intent

// Intent is the classified purpose of a user prompt, drawn from a fixed
// closed set.
type Intent string

const (
	SimpleCode       Intent = "simple_code"
	NeedsCodeContext Intent = "needs_code_context"
	ImageGen         Intent = "image_gen"
	ImageAndCode     Intent = "image_and_code"
	WebSearch        Intent = "web_search"
	WebAndCode       Intent = "web_and_code"
	Clarify          Intent = "clarify"
	ChatResponse     Intent = "chat_response"
)

// Confidence thresholds. The values are tuned; keep them as-is.
const (
	// Below LowConfidence the pipeline refuses to act on the guess and
	// routes to clarify instead.
	LowConfidence = 0.4
	// Between LowConfidence and FlagConfidence the original intent is
	// honored but flagged in the trace.
	FlagConfidence = 0.6
)

// Valid reports whether s is a member of the closed intent set.
func Valid(s Intent) bool {
	switch s {
	case SimpleCode, NeedsCodeContext, ImageGen, ImageAndCode,
		WebSearch, WebAndCode, Clarify, ChatResponse:
		return true
	}
	return false
}

// Classification is the classifier's verdict on one prompt.
// Exactly the fields relevant to Intent are populated; the rest stay empty.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`

	CodeInstruction string   `json:"codeInstruction,omitempty"`
	ImagePrompt     string   `json:"imagePrompt,omitempty"`
	SearchQuery     string   `json:"searchQuery,omitempty"`
	ContextHints    []string `json:"contextHints,omitempty"`
	ClarifyQuestion string   `json:"clarifyQuestion,omitempty"`
	ChatResponse    string   `json:"chatResponse,omitempty"`
	Reasoning       string   `json:"reasoning,omitempty"`
}

// NeedsContext reports whether the verdict asks for code-context gathering.
func (c *Classification) NeedsContext() bool {
	switch c.Intent {
	case NeedsCodeContext, ImageAndCode, WebAndCode:
		return true
	}
	return false
}

// Effective applies the confidence policy: a guess below LowConfidence is
// never acted upon, it becomes a clarify verdict instead. Flagged reports
// whether the honored intent sits in the uncertain band and should be noted
// in the trace.
func (c *Classification) Effective() (eff Intent, flagged bool) {
	if c.Confidence < LowConfidence && c.Intent != Clarify {
		return Clarify, false
	}
	return c.Intent, c.Confidence >= LowConfidence && c.Confidence < FlagConfidence
}
