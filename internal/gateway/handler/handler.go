// Package handler holds the HTTP surface: the generation endpoints, the
// project operations proxied to the generation platform, and the media
// library.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"sajtmaskin/internal/inflight"
	"sajtmaskin/internal/media"
	"sajtmaskin/internal/orchestrator"
	"sajtmaskin/internal/projectstore"
	"sajtmaskin/internal/stream"
	"sajtmaskin/internal/v0"
)

// Pipeline is the orchestration surface the handlers drive.
type Pipeline interface {
	Orchestrate(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
	Stream(ctx context.Context, req orchestrator.Request, backend orchestrator.StreamBackend, emit func(stream.Event)) (*orchestrator.Result, error)
}

// Platform is the slice of the generation platform client used outside the
// pipeline: project listing, deletion, zip export and the streaming call.
type Platform interface {
	ListProjects(ctx context.Context) ([]v0.Project, error)
	GetProject(ctx context.Context, projectID string) (*v0.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	DownloadVersionZip(ctx context.Context, chatID, versionID string) (io.ReadCloser, error)
	StreamChat(ctx context.Context, req v0.CreateChatRequest) (io.ReadCloser, error)
}

type Handler struct {
	pipeline Pipeline
	platform Platform
	store    *projectstore.Store
	library  media.Library
	model    string
}

// New builds the handler set. library may be nil when no object storage is
// configured; the media endpoints then answer 503.
func New(pipeline Pipeline, platform Platform, store *projectstore.Store, library media.Library, model string) *Handler {
	return &Handler{
		pipeline: pipeline,
		platform: platform,
		store:    store,
		library:  library,
		model:    model,
	}
}

func (h *Handler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handler: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// owner identifies the requester for in-flight conflict reporting.
func owner(r *http.Request) string {
	if v := r.Header.Get("X-Request-Owner"); v != "" {
		return v
	}
	return r.RemoteAddr
}

func statusForPipelineError(err error) int {
	var conflict *inflight.Conflict
	if errors.As(err, &conflict) {
		return http.StatusConflict
	}
	return http.StatusBadGateway
}
