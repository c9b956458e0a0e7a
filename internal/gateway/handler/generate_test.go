package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sajtmaskin/internal/inflight"
	"sajtmaskin/internal/orchestrator"
	"sajtmaskin/internal/projectstore"
	"sajtmaskin/internal/stream"
	"sajtmaskin/internal/v0"
)

type fakePipeline struct {
	res  *orchestrator.Result
	err  error
	last orchestrator.Request
}

func (f *fakePipeline) Orchestrate(_ context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	f.last = req
	return f.res, f.err
}

func (f *fakePipeline) Stream(_ context.Context, req orchestrator.Request, _ orchestrator.StreamBackend, emit func(stream.Event)) (*orchestrator.Result, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	emit(stream.Event{Type: stream.EventDone, ChatID: "c"})
	return f.res, nil
}

type fakePlatform struct {
	projects []v0.Project
}

func (f *fakePlatform) ListProjects(context.Context) ([]v0.Project, error) { return f.projects, nil }
func (f *fakePlatform) GetProject(_ context.Context, id string) (*v0.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, io.EOF
}
func (f *fakePlatform) DeleteProject(context.Context, string) error { return nil }
func (f *fakePlatform) DownloadVersionZip(context.Context, string, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("PK")), nil
}
func (f *fakePlatform) StreamChat(context.Context, v0.CreateChatRequest) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func newTestHandler(t *testing.T, p Pipeline) *Handler {
	t.Helper()
	store := projectstore.New(filepath.Join(t.TempDir(), "projects.json"))
	return New(p, &fakePlatform{}, store, nil, "")
}

func TestHandleGenerate(t *testing.T) {
	pipe := &fakePipeline{res: &orchestrator.Result{
		Intent:     "simple_code",
		Confidence: 0.9,
		Generation: &v0.Generation{ChatID: "c1", DemoURL: "https://demo.v0.dev/1"},
	}}
	h := newTestHandler(t, pipe)

	body := strings.NewReader(`{"prompt":"bygg en sida","projectId":"p1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if pipe.last.ProjectID != "p1" {
		t.Fatalf("project id not forwarded: %+v", pipe.last)
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Generation == nil || resp.Generation.ChatID != "c1" {
		t.Fatalf("generation missing from response: %+v", resp)
	}
}

func TestHandleGenerateRequiresPrompt(t *testing.T) {
	h := newTestHandler(t, &fakePipeline{})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHandleGenerateConflictMapsTo409(t *testing.T) {
	h := newTestHandler(t, &fakePipeline{err: &inflight.Conflict{Key: "k", Owner: "other"}})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"prompt":"x"}`))
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
}

func TestHandleListMediaWithoutLibrary(t *testing.T) {
	h := newTestHandler(t, &fakePipeline{})
	req := httptest.NewRequest(http.MethodGet, "/api/media/p1", nil)
	rec := httptest.NewRecorder()
	h.HandleListMedia(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

func TestHandleProjectHistory(t *testing.T) {
	store := projectstore.New(filepath.Join(t.TempDir(), "projects.json"))
	store.Put(projectstore.Record{ChatID: "c1", ProjectID: "p1", VersionID: "v1"})
	h := New(&fakePipeline{}, &fakePlatform{}, store, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/p1/history", nil)
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.HandleProjectHistory(rec, req)

	var resp struct {
		History []projectstore.Record `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.History) != 1 || resp.History[0].ChatID != "c1" {
		t.Fatalf("unexpected history: %+v", resp.History)
	}
}
