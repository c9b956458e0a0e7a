// Package projectstore persists the outcome of each generation: which chat
// and version a project currently points at, plus its history. Backed by
// Postgres when a DSN is configured, otherwise by a JSON file so the
// service runs without any infrastructure.
package projectstore

import (
	"database/sql"
	"os"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Record is one completed generation bound to a project.
type Record struct {
	ChatID    string    `json:"chatId"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	VersionID string    `json:"versionId"`
	DemoURL   string    `json:"demoUrl"`
	Prompt    string    `json:"prompt"`
	Intent    string    `json:"intent"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func normalizeRecord(r Record) Record {
	r.ChatID = strings.TrimSpace(r.ChatID)
	r.ProjectID = strings.TrimSpace(r.ProjectID)
	if r.Name == "" {
		r.Name = "Projekt"
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return r
}

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byChat   map[string]Record

	schemaOnce sync.Once
	schemaErr  error

	historyCache *lru.Cache[string, []Record]
}

func New(path string) *Store {
	return &Store{
		path:   path,
		byChat: make(map[string]Record),
	}
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, []Record](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:           db,
		historyCache: cache,
	}, nil
}

// NewFromEnv prefers Postgres via PROJECT_STORE_PG_DSN and falls back to
// the JSON file at path when the DSN is absent or the database is down.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("PROJECT_STORE_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

func (s *Store) EnsureLoaded() {
	if s == nil {
		return
	}
	if s.db != nil {
		_ = s.ensureSchema()
		return
	}
	s.ensureLoadedFile()
}

func (s *Store) Save() {
	if s == nil || s.db != nil {
		return
	}
	s.saveFile()
}

func (s *Store) Get(chatID string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	if s.db != nil {
		return s.getDB(chatID)
	}
	return s.getFile(chatID)
}

// Put inserts or replaces the record for its chat.
func (s *Store) Put(rec Record) {
	if s == nil {
		return
	}
	if s.db != nil {
		s.putDB(rec)
		if s.historyCache != nil && rec.ProjectID != "" {
			s.historyCache.Remove(rec.ProjectID)
		}
		return
	}
	s.putFile(rec)
}

// History lists a project's records newest first. On the database path the
// result is cached and invalidated by Put.
func (s *Store) History(projectID string) []Record {
	if s == nil {
		return nil
	}
	if s.db != nil {
		if s.historyCache != nil {
			if cached, ok := s.historyCache.Get(projectID); ok {
				return cached
			}
		}
		recs := s.historyDB(projectID)
		if s.historyCache != nil {
			s.historyCache.Add(projectID, recs)
		}
		return recs
	}
	return s.historyFile(projectID)
}

// Latest returns the newest record for a project.
func (s *Store) Latest(projectID string) (Record, bool) {
	recs := s.History(projectID)
	if len(recs) == 0 {
		return Record{}, false
	}
	return recs[0], true
}

func (s *Store) Delete(chatID string) {
	if s == nil {
		return
	}
	if s.db != nil {
		s.deleteDB(chatID)
		return
	}
	s.deleteFile(chatID)
}
