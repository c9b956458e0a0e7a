// Package orchestrator runs the prompt pipeline: fast-path check, intent
// classification, context gathering, enhancement, enrichment and the
// generation dispatch. Stages run strictly in sequence because each one
// consumes the previous stage's output; only the side tasks (web search,
// image generation) run concurrently with each other.
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"sajtmaskin/internal/contextgather"
	"sajtmaskin/internal/dispatch"
	"sajtmaskin/internal/enhance"
	"sajtmaskin/internal/enrich"
	"sajtmaskin/internal/imagegen"
	"sajtmaskin/internal/inflight"
	"sajtmaskin/internal/intent"
	"sajtmaskin/internal/media"
	"sajtmaskin/internal/projectstore"
	"sajtmaskin/internal/v0"
	"sajtmaskin/internal/websearch"
)

// Request is one inbound generation request. A non-empty ChatID marks a
// prior artifact: the pipeline refines instead of generating from scratch.
type Request struct {
	Prompt    string
	ChatID    string
	ProjectID string
	Owner     string
	Model     string

	// Files is the candidate corpus for context gathering, typically the
	// current project's source files.
	Files []contextgather.ProjectFile
}

// HasArtifact reports whether a prior generation exists to refine.
func (r *Request) HasArtifact() bool { return strings.TrimSpace(r.ChatID) != "" }

// DedupKey is the logical request key for in-flight deduplication.
func (r *Request) DedupKey() string {
	if r.ChatID != "" {
		return "chat:" + r.ChatID
	}
	if r.ProjectID != "" {
		return "project:" + r.ProjectID
	}
	return "prompt:" + r.Prompt
}

// Result is the pipeline outcome. Exactly one of ClarifyQuestion,
// ChatMessage, or a populated Generation/Images/SearchResults set is the
// payload, depending on where the pipeline terminated.
type Result struct {
	Intent     intent.Intent
	Confidence float64
	Flagged    bool
	FastPath   bool

	ClarifyQuestion string
	ChatMessage     string
	SearchResults   []websearch.Result
	Images          []string
	Generation      *v0.Generation
	Repaired        bool

	Steps    []string
	Warnings []string
}

func (r *Result) step(format string, args ...any) {
	r.Steps = append(r.Steps, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Backend is the dispatch surface the orchestrator drives.
type Backend interface {
	Dispatch(ctx context.Context, req dispatch.Request) (*dispatch.Result, error)
}

// Orchestrator wires the pipeline stages. Search, image generation, media
// library and store are optional; a nil dependency disables that side
// channel and the intents that strictly need it degrade to a warning.
type Orchestrator struct {
	classifier *intent.Classifier
	enhancer   *enhance.Enhancer
	backend    Backend
	registry   *inflight.Registry

	searcher websearch.Searcher
	images   imagegen.Generator
	library  media.Library
	store    *projectstore.Store
}

type Option func(*Orchestrator)

func WithSearcher(s websearch.Searcher) Option { return func(o *Orchestrator) { o.searcher = s } }
func WithImageGen(g imagegen.Generator) Option { return func(o *Orchestrator) { o.images = g } }
func WithMediaLibrary(l media.Library) Option  { return func(o *Orchestrator) { o.library = l } }
func WithStore(s *projectstore.Store) Option   { return func(o *Orchestrator) { o.store = s } }

func New(classifier *intent.Classifier, enhancer *enhance.Enhancer, backend Backend, registry *inflight.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: classifier,
		enhancer:   enhancer,
		backend:    backend,
		registry:   registry,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Orchestrate runs the full pipeline for one request. A duplicate of an
// in-flight request fails immediately with *inflight.Conflict.
func (o *Orchestrator) Orchestrate(ctx context.Context, req Request) (*Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("orchestrate: empty prompt")
	}
	req.Prompt = prompt

	if err := o.registry.TryAcquire(req.DedupKey(), req.Owner); err != nil {
		return nil, err
	}
	defer o.registry.Release(req.DedupKey())

	prep, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if prep.terminal {
		return prep.res, nil
	}
	return prep.res, o.generate(ctx, req, prep.instruction, prep.images, prep.res)
}

// prepared is the pipeline state after every stage up to the generation
// call itself. terminal means the pipeline already produced its payload
// (clarify, chat answer, pure search or image results).
type prepared struct {
	res         *Result
	instruction string
	images      []string
	terminal    bool
}

func (o *Orchestrator) prepare(ctx context.Context, req Request) (*prepared, error) {
	prompt := req.Prompt
	res := &Result{}

	// Fast path: trivial edits of an existing artifact skip the classifier
	// and every enhancement stage.
	if cls, ok := intent.FastPath(prompt, req.HasArtifact()); ok {
		res.FastPath = true
		res.Intent = cls.Intent
		res.Confidence = cls.Confidence
		res.step("fast-path: dispatching directly")
		return &prepared{res: res, instruction: cls.CodeInstruction}, nil
	}

	cls := o.classifier.Classify(ctx, prompt, req.HasArtifact())
	eff, flagged := cls.Effective()
	res.Intent = eff
	res.Confidence = cls.Confidence
	res.Flagged = flagged
	res.step("classified as %s (confidence %.2f)", cls.Intent, cls.Confidence)
	if eff != cls.Intent {
		res.step("confidence below %.1f, routing to clarify", intent.LowConfidence)
	}
	if flagged {
		res.warn("uncertain classification: %s at %.2f", eff, cls.Confidence)
	}

	switch eff {
	case intent.Clarify:
		o.clarify(cls, req, res)
		return &prepared{res: res, terminal: true}, nil

	case intent.ChatResponse:
		res.ChatMessage = cls.ChatResponse
		if res.ChatMessage == "" {
			res.ChatMessage = "Jag är en sajtbyggare. Beskriv sidan du vill ha, så bygger jag den."
		}
		res.step("answered conversationally")
		return &prepared{res: res, terminal: true}, nil

	case intent.WebSearch:
		res.SearchResults = o.search(ctx, cls, prompt, res)
		res.step("returned %d search results", len(res.SearchResults))
		return &prepared{res: res, terminal: true}, nil

	case intent.ImageGen:
		res.Images = o.generateImages(ctx, cls, prompt, req.ProjectID, res)
		res.step("returned %d generated images", len(res.Images))
		return &prepared{res: res, terminal: true}, nil
	}

	// Code-producing intents from here on.
	var code *contextgather.CodeContext
	if cls.NeedsContext() {
		hints := cls.ContextHints
		if len(hints) == 0 {
			hints = contextgather.ExtractHints(prompt)
		}
		code = contextgather.Gather(hints, prompt, req.Files)
		res.step("gathered %d relevant files", len(code.RelevantFiles))
	}

	// Side tasks run concurrently with each other; the backbone waits for
	// both before enrichment needs their output.
	src := enrich.Sources{Code: code}
	var wg sync.WaitGroup
	if eff == intent.WebAndCode {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.SearchResults = o.search(ctx, cls, prompt, res)
		}()
	}
	if eff == intent.ImageAndCode {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.GeneratedImages = o.generateImages(ctx, cls, prompt, req.ProjectID, res)
		}()
	}
	wg.Wait()

	instruction := cls.CodeInstruction
	if instruction == "" {
		instruction = prompt
	}
	verdict := o.enhancer.Enhance(ctx, instruction, req.HasArtifact(), code)
	if verdict.ClarifyQuestion != "" {
		res.ClarifyQuestion = verdict.ClarifyQuestion
		res.step("enhancer asked for clarification")
		return &prepared{res: res, terminal: true}, nil
	}
	if verdict.WasEnhanced {
		res.step("instruction enhanced")
	}

	if o.library != nil && req.ProjectID != "" {
		entries, err := o.library.List(ctx, req.ProjectID)
		if err != nil {
			res.warn("media library unavailable: %v", err)
		} else {
			src.MediaCatalog = entries
		}
	}

	return &prepared{
		res:         res,
		instruction: enrich.Build(verdict.Instruction, src),
		images:      src.GeneratedImages,
	}, nil
}

// generate dispatches the final instruction and persists the outcome.
func (o *Orchestrator) generate(ctx context.Context, req Request, instruction string, images []string, res *Result) error {
	dres, err := o.backend.Dispatch(ctx, dispatch.Request{
		Instruction: instruction,
		ChatID:      req.ChatID,
		ProjectID:   req.ProjectID,
		Model:       req.Model,
	})
	if err != nil {
		return err
	}
	res.Generation = dres.Generation
	res.Repaired = dres.Repaired
	res.Warnings = append(res.Warnings, dres.Warnings...)
	if len(dres.Findings) > 0 {
		res.step("auto-repair: %d finding(s), repaired=%v", len(dres.Findings), dres.Repaired)
	}
	res.Images = append(res.Images, images...)
	res.step("generation complete: chat %s version %s", dres.Generation.ChatID, dres.Generation.VersionID)

	o.persist(req, res)
	return nil
}

// persist records the generation outcome. It runs even when the caller is
// gone: finalization must not be lost to a disconnect.
func (o *Orchestrator) persist(req Request, res *Result) {
	if o.store == nil || res.Generation == nil {
		return
	}
	o.store.Put(projectstore.Record{
		ChatID:    res.Generation.ChatID,
		ProjectID: req.ProjectID,
		VersionID: res.Generation.VersionID,
		DemoURL:   res.Generation.DemoURL,
		Prompt:    req.Prompt,
		Intent:    string(res.Intent),
		Model:     res.Generation.Model,
	})
	o.store.Save()
}

// clarify picks the question to send back. When the prompt carries UI
// vocabulary, gathered matches make the question specific; short vague
// prompts skip gathering entirely.
func (o *Orchestrator) clarify(cls *intent.Classification, req Request, res *Result) {
	question := cls.ClarifyQuestion

	if contextgather.HasUIVocabulary(req.Prompt) && len(req.Files) > 0 {
		hints := cls.ContextHints
		if len(hints) == 0 {
			hints = contextgather.ExtractHints(req.Prompt)
		}
		code := contextgather.Gather(hints, req.Prompt, req.Files)
		if len(code.RelevantFiles) > 0 {
			var names []string
			for _, f := range code.RelevantFiles {
				names = append(names, f.Name)
			}
			question = fmt.Sprintf("Menar du något i %s? Beskriv gärna exakt vad som ska ändras.",
				strings.Join(names, ", "))
			res.step("clarify grounded in %d matched files", len(code.RelevantFiles))
		}
	}

	if question == "" {
		question = "Kan du beskriva mer exakt vad du vill att jag ska göra?"
	}
	res.ClarifyQuestion = question
	res.step("asked for clarification")
}

func (o *Orchestrator) search(ctx context.Context, cls *intent.Classification, prompt string, res *Result) []websearch.Result {
	if o.searcher == nil {
		res.warn("web search requested but not configured")
		return nil
	}
	query := cls.SearchQuery
	if query == "" {
		query = prompt
	}
	results, err := o.searcher.Search(ctx, query, 5)
	if err != nil {
		log.Printf("orchestrator: web search failed: %v", err)
		res.warn("web search failed: %v", err)
		return nil
	}
	return results
}

func (o *Orchestrator) generateImages(ctx context.Context, cls *intent.Classification, prompt, projectID string, res *Result) []string {
	if o.images == nil {
		res.warn("image generation requested but not configured")
		return nil
	}
	imagePrompt := cls.ImagePrompt
	if imagePrompt == "" {
		imagePrompt = prompt
	}
	generated, err := o.images.Generate(ctx, imagePrompt, 1)
	if err != nil {
		log.Printf("orchestrator: image generation failed: %v", err)
		res.warn("image generation failed: %v", err)
		return nil
	}

	var urls []string
	for i, img := range generated {
		if img.URL != "" {
			urls = append(urls, img.URL)
			continue
		}
		// Byte payloads are only usable through the media library.
		if o.library == nil || projectID == "" {
			res.warn("generated image returned as bytes but no media library is configured")
			continue
		}
		name := fmt.Sprintf("generated-%d.png", i+1)
		entry, err := o.library.Put(ctx, projectID, name, "image/png", bytes.NewReader(img.Data), int64(len(img.Data)))
		if err != nil {
			res.warn("storing generated image failed: %v", err)
			continue
		}
		urls = append(urls, entry.URL)
	}
	return urls
}
