package projectstore

import (
	"strings"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS generation_records (
  chat_id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT 'Projekt',
  version_id TEXT NOT NULL DEFAULT '',
  demo_url TEXT NOT NULL DEFAULT '',
  prompt TEXT NOT NULL DEFAULT '',
  intent TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_generation_records_project_id ON generation_records (project_id);
`)
	})
	return s.schemaErr
}

func scanRecordDB(row rowScanner) (Record, bool) {
	var rec Record
	err := row.Scan(
		&rec.ChatID,
		&rec.ProjectID,
		&rec.Name,
		&rec.VersionID,
		&rec.DemoURL,
		&rec.Prompt,
		&rec.Intent,
		&rec.Model,
		&rec.CreatedAt,
	)
	if err != nil {
		return Record{}, false
	}
	return normalizeRecord(rec), true
}

const recordColumns = `chat_id, project_id, name, version_id, demo_url, prompt, intent, model, created_at`

func (s *Store) getDB(chatID string) (Record, bool) {
	if err := s.ensureSchema(); err != nil {
		return Record{}, false
	}
	id := strings.TrimSpace(chatID)
	if id == "" {
		return Record{}, false
	}
	row := s.db.QueryRow(`SELECT `+recordColumns+`
FROM generation_records WHERE chat_id = $1`, id)
	return scanRecordDB(row)
}

func (s *Store) putDB(rec Record) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	n := normalizeRecord(rec)
	if n.ChatID == "" {
		return
	}
	_, _ = s.db.Exec(`
INSERT INTO generation_records (
  chat_id, project_id, name, version_id, demo_url, prompt, intent, model, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (chat_id)
DO UPDATE SET project_id=EXCLUDED.project_id,
  name=EXCLUDED.name,
  version_id=EXCLUDED.version_id,
  demo_url=EXCLUDED.demo_url,
  prompt=EXCLUDED.prompt,
  intent=EXCLUDED.intent,
  model=EXCLUDED.model,
  created_at=EXCLUDED.created_at`,
		n.ChatID, n.ProjectID, n.Name, n.VersionID, n.DemoURL, n.Prompt, n.Intent, n.Model, n.CreatedAt)
}

func (s *Store) historyDB(projectID string) []Record {
	if err := s.ensureSchema(); err != nil {
		return nil
	}
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return nil
	}
	rows, err := s.db.Query(`SELECT `+recordColumns+`
FROM generation_records WHERE project_id = $1
ORDER BY created_at DESC`, pid)
	if err != nil {
		return nil
	}
	defer rows.Close()
	out := make([]Record, 0, 16)
	for rows.Next() {
		if rec, ok := scanRecordDB(rows); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store) deleteDB(chatID string) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	id := strings.TrimSpace(chatID)
	if id == "" {
		return
	}
	if rec, ok := s.getDB(id); ok && s.historyCache != nil && rec.ProjectID != "" {
		s.historyCache.Remove(rec.ProjectID)
	}
	_, _ = s.db.Exec(`DELETE FROM generation_records WHERE chat_id = $1`, id)
}
