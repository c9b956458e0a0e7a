// Package dispatch invokes the generation backend and owns the bounded
// auto-repair pass: detect known defect signatures in the generated files
// and issue at most one combined repair call per dispatch.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sajtmaskin/internal/v0"
)

// Backend is the slice of the generation client the dispatcher needs.
type Backend interface {
	CreateChat(ctx context.Context, req v0.CreateChatRequest) (*v0.Generation, error)
	SendMessage(ctx context.Context, chatID, message string) (*v0.Generation, error)
}

// Request describes one generation dispatch. A non-empty ChatID selects
// refine mode: the instruction is applied on top of that chat's code.
type Request struct {
	Instruction string
	ChatID      string
	ProjectID   string
	System      string
	Model       string
}

// Result carries the final generation plus the repair trace. Warnings are
// never fatal; unresolved findings surface here instead of failing the
// dispatch.
type Result struct {
	Generation *v0.Generation
	Findings   []Finding
	Repaired   bool
	Warnings   []string
}

type Dispatcher struct {
	backend Backend
}

func New(backend Backend) *Dispatcher {
	return &Dispatcher{backend: backend}
}

// Dispatch runs the generation call and, when the detector fires, exactly
// one combined repair call. The repair result replaces the original
// wholesale when it carries files; otherwise the pre-repair result is kept
// and the failure recorded.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, fmt.Errorf("dispatch: empty instruction")
	}

	gen, err := d.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &Result{Generation: gen}
	res.Findings = Detect(gen.Files)
	if len(res.Findings) == 0 {
		return res, nil
	}

	log.Printf("dispatch: %d repair finding(s) in chat %s, issuing one repair call", len(res.Findings), gen.ChatID)
	repaired, err := d.backend.SendMessage(ctx, gen.ChatID, repairInstruction(res.Findings))
	switch {
	case err != nil:
		res.Warnings = append(res.Warnings, fmt.Sprintf("repair call failed: %v", err))
	case len(repaired.Files) == 0:
		res.Warnings = append(res.Warnings, "repair call returned no files; keeping pre-repair result")
	default:
		if repaired.ChatID == "" {
			repaired.ChatID = gen.ChatID
		}
		res.Generation = repaired
		res.Repaired = true
		// Findings that survived the repair become warnings, not retries.
		for _, f := range Detect(repaired.Files) {
			res.Warnings = append(res.Warnings, "unresolved after repair: "+f.String())
		}
	}
	return res, nil
}

func (d *Dispatcher) generate(ctx context.Context, req Request) (*v0.Generation, error) {
	if req.ChatID != "" {
		return d.backend.SendMessage(ctx, req.ChatID, req.Instruction)
	}
	return d.backend.CreateChat(ctx, v0.CreateChatRequest{
		Message:   req.Instruction,
		System:    req.System,
		ProjectID: req.ProjectID,
		Model:     req.Model,
	})
}
