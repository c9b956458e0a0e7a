package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateReturnsURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != DefaultModel || req.Size != DefaultSize {
			t.Errorf("defaults not applied: %+v", req)
		}
		if req.N != 2 {
			t.Errorf("n not forwarded: %d", req.N)
		}
		io.WriteString(w, `{"data":[{"url":"https://img.test/a.png"},{"url":"https://img.test/b.png"}]}`)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	images, err := c.Generate(context.Background(), "en ko på en äng", 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(images) != 2 || images[0].URL != "https://img.test/a.png" {
		t.Fatalf("unexpected result: %+v", images)
	}
}

func TestGenerateDecodesBase64(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"b64_json":"`+payload+`"}]}`)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	images, err := c.Generate(context.Background(), "logo", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(images[0].Data) != "png-bytes" {
		t.Fatalf("base64 payload not decoded: %q", images[0].Data)
	}
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"prompt rejected"}}`)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "x", 1)
	if err == nil || !strings.Contains(err.Error(), "prompt rejected") {
		t.Fatalf("api error message lost: %v", err)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	c := NewClient("k")
	if _, err := c.Generate(context.Background(), "   ", 1); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}
