package projectstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []Record
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			id := strings.TrimSpace(row.ChatID)
			if id == "" {
				continue
			}
			s.byChat[id] = normalizeRecord(row)
		}
	})
}

func (s *Store) saveFile() {
	s.ensureLoadedFile()
	s.mu.RLock()
	rows := make([]Record, 0, len(s.byChat))
	for _, rec := range s.byChat {
		rows = append(rows, rec)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) getFile(chatID string) (Record, bool) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(chatID)
	if id == "" {
		return Record{}, false
	}
	s.mu.RLock()
	rec, ok := s.byChat[id]
	s.mu.RUnlock()
	return rec, ok
}

func (s *Store) putFile(rec Record) {
	s.ensureLoadedFile()
	n := normalizeRecord(rec)
	if n.ChatID == "" {
		return
	}
	s.mu.Lock()
	s.byChat[n.ChatID] = n
	s.mu.Unlock()
}

func (s *Store) historyFile(projectID string) []Record {
	s.ensureLoadedFile()
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return nil
	}
	s.mu.RLock()
	out := make([]Record, 0, 8)
	for _, rec := range s.byChat {
		if rec.ProjectID == pid {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) deleteFile(chatID string) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(chatID)
	if id == "" {
		return
	}
	s.mu.Lock()
	delete(s.byChat, id)
	s.mu.Unlock()
}
