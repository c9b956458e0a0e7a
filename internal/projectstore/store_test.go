package projectstore

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")

	s := New(path)
	s.EnsureLoaded()
	s.Put(Record{
		ChatID:    "chat_1",
		ProjectID: "proj_1",
		Name:      "Butikssida",
		VersionID: "ver_1",
		DemoURL:   "https://demo.v0.dev/1",
		Prompt:    "bygg en butik",
		Intent:    "complex_code",
		CreatedAt: time.Now().Add(-time.Hour),
	})
	s.Put(Record{
		ChatID:    "chat_2",
		ProjectID: "proj_1",
		VersionID: "ver_2",
		Prompt:    "ändra färgen",
		Intent:    "simple_code",
	})
	s.Save()

	// Fresh store reads back from disk.
	s2 := New(path)
	rec, ok := s2.Get("chat_1")
	if !ok || rec.VersionID != "ver_1" {
		t.Fatalf("record not reloaded: %+v ok=%v", rec, ok)
	}
	if rec.Name != "Butikssida" {
		t.Fatalf("name lost: %q", rec.Name)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "projects.json"))
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		s.Put(Record{
			ChatID:    id,
			ProjectID: "p",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	recs := s.History("p")
	if len(recs) != 3 {
		t.Fatalf("want 3 records, got %d", len(recs))
	}
	if recs[0].ChatID != "c" || recs[2].ChatID != "a" {
		t.Fatalf("not newest first: %v %v %v", recs[0].ChatID, recs[1].ChatID, recs[2].ChatID)
	}

	latest, ok := s.Latest("p")
	if !ok || latest.ChatID != "c" {
		t.Fatalf("Latest: %+v ok=%v", latest, ok)
	}
}

func TestPutRequiresChatID(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "projects.json"))
	s.Put(Record{ProjectID: "p"})
	if recs := s.History("p"); len(recs) != 0 {
		t.Fatalf("record without chat id stored: %+v", recs)
	}
}

func TestDelete(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "projects.json"))
	s.Put(Record{ChatID: "x", ProjectID: "p"})
	s.Delete("x")
	if _, ok := s.Get("x"); ok {
		t.Fatal("record survived delete")
	}
}

func TestNameDefaults(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "projects.json"))
	s.Put(Record{ChatID: "x"})
	rec, _ := s.Get("x")
	if rec.Name != "Projekt" {
		t.Fatalf("default name missing: %q", rec.Name)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("created at not defaulted")
	}
}
