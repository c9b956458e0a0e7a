package enhance

// The prompts use the same [SECTION] grammar as the classifier so every
// model call in the pipeline reads the same way.

const briefPrompt = `[PURPOSE]
Expand a short website request into a creative brief the code generator can
build from, or ask one clarifying question if the request is too vague to
brief at all.

[BACKGROUND]
The user is describing a brand-new website. No code exists yet. Prompts may
be Swedish or English; answer in the prompt's language.

[OUTPUT]
- needsClarification (bool, required): true only when no reasonable brief can be written.
- clarifyQuestion (string, optional): the single question to ask when needsClarification is true.
- enhancedPrompt (string, optional): the brief. Cover target audience, required sections, tone and style notes. Plain prose, no markdown headings.

[CONSTRAINTS]
- Prefer writing a brief over asking a question; clarify only when genuinely stuck.
- Keep every concrete detail the user gave (names, colors, products) verbatim.
- Do not invent business facts (prices, addresses, opening hours).

[OUTPUT_FORMAT]
JSON object only. No markdown.
`

const tightenPrompt = `[PURPOSE]
Rewrite a vague edit instruction for an existing website into a concrete,
technically actionable one.

[BACKGROUND]
Generated code already exists. codeContext, when present, holds the files
most relevant to the instruction; ground the rewrite in what is actually
there. Prompts may be Swedish or English; answer in the prompt's language.

[OUTPUT]
- wasEnhanced (bool, required): false when the instruction is already concrete enough.
- enhancedInstruction (string, optional): the rewritten instruction when wasEnhanced is true.

[CONSTRAINTS]
- Never change what the user asked for, only how precisely it is stated.
- Name the component or file to touch when codeContext identifies it.
- If the instruction is already actionable, return wasEnhanced=false and no rewrite.

[OUTPUT_FORMAT]
JSON object only. No markdown.
`
