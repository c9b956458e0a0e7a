package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sajtmaskin/internal/stream"
	"sajtmaskin/internal/v0"
)

// StreamBackend starts a generation whose response arrives as an event
// stream instead of one blocking JSON body.
type StreamBackend interface {
	StreamChat(ctx context.Context, req v0.CreateChatRequest) (io.ReadCloser, error)
}

// Stream runs the pipeline like Orchestrate but streams the generation
// phase: every decoded event is handed to emit in arrival order. Refine
// requests have no streaming endpoint and fall back to a blocking dispatch
// followed by one synthetic terminal event.
//
// The stream reader is released through a single finalization path reached
// from normal completion, read errors and cancellation alike.
func (o *Orchestrator) Stream(ctx context.Context, req Request, backend StreamBackend, emit func(stream.Event)) (*Result, error) {
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
	res := prep.res
	if prep.terminal {
		return res, nil
	}

	if req.HasArtifact() {
		if err := o.generate(ctx, req, prep.instruction, prep.images, res); err != nil {
			return nil, err
		}
		emit(stream.Event{
			Type:      stream.EventDone,
			ChatID:    res.Generation.ChatID,
			VersionID: res.Generation.VersionID,
			DemoURL:   res.Generation.DemoURL,
		})
		return res, nil
	}

	body, err := backend.StreamChat(ctx, v0.CreateChatRequest{
		Message:   prep.instruction,
		ProjectID: req.ProjectID,
		Model:     req.Model,
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	dec := stream.NewDecoder(0)
	buf := make([]byte, 4096)
	var done *stream.Event
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				if ev.Type == stream.EventDone {
					d := ev
					done = &d
				}
				emit(ev)
			}
		}
		if readErr != nil {
			break
		}
	}
	if done == nil {
		if ev, ok := dec.Finalize(); ok {
			d := ev
			done = &d
			emit(ev)
		}
	}

	res.Images = append(res.Images, prep.images...)
	if done == nil {
		res.warn("stream ended without completion info")
		return res, nil
	}
	res.Generation = &v0.Generation{
		ChatID:    done.ChatID,
		VersionID: done.VersionID,
		DemoURL:   done.DemoURL,
	}
	res.step("stream complete: chat %s version %s", done.ChatID, done.VersionID)
	o.persist(req, res)
	return res, nil
}
