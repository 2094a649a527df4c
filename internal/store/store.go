package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/koereq/docpipeline/internal/models"
)

const (
	sessionPrefix = "session_"
	promptsFile   = "custom_prompts.json"
)

// Store is the file-backed persistence layer: one JSON file per session
// record plus a single collection file for custom prompts. Writes go
// through a temp file and an atomic rename so concurrent readers never see
// a half-written file. Single-process use is assumed; callers serialize
// writes to the same collection.
type Store struct {
	dir string
	mu  sync.RWMutex // guards the prompt collection rewrite
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.dir, sessionPrefix+id+".json")
}

// writeAtomic marshals v and replaces path in one rename.
func (s *Store) writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// SaveSession writes or overwrites the record addressed by its ID.
func (s *Store) SaveSession(rec *models.SessionRecord) error {
	return s.writeAtomic(s.sessionPath(rec.ID), rec)
}

// LoadSessions returns every readable session record, most recent first.
// Files that fail to parse are skipped rather than surfaced as errors.
func (s *Store) LoadSessions() ([]models.SessionRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var sessions []models.SessionRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, sessionPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}

		var rec models.SessionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		sessions = append(sessions, rec)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

// GetSession returns the record addressed by id, or nil when it is absent
// or unreadable.
func (s *Store) GetSession(id string) (*models.SessionRecord, error) {
	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var rec models.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

// DeleteSession removes the record if present. Deleting an absent record
// is not an error.
func (s *Store) DeleteSession(id string) error {
	err := os.Remove(s.sessionPath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// SaveCustomPrompt upserts by ID against the full collection and rewrites
// the collection file.
func (s *Store) SaveCustomPrompt(prompt models.CustomPrompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts := s.readPrompts()

	replaced := false
	for i := range prompts {
		if prompts[i].ID == prompt.ID {
			prompts[i] = prompt
			replaced = true
			break
		}
	}
	if !replaced {
		prompts = append(prompts, prompt)
	}

	return s.writeAtomic(filepath.Join(s.dir, promptsFile), prompts)
}

// DeleteCustomPrompt removes the prompt with the given ID and rewrites the
// collection file. Deleting an absent prompt is not an error.
func (s *Store) DeleteCustomPrompt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts := s.readPrompts()

	kept := prompts[:0]
	for _, p := range prompts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(prompts) {
		return nil
	}

	return s.writeAtomic(filepath.Join(s.dir, promptsFile), kept)
}

// LoadCustomPrompts returns the stored collection. An absent or
// undecodable file yields the empty collection, never an error.
func (s *Store) LoadCustomPrompts() ([]models.CustomPrompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readPrompts(), nil
}

func (s *Store) readPrompts() []models.CustomPrompt {
	data, err := os.ReadFile(filepath.Join(s.dir, promptsFile))
	if err != nil {
		return []models.CustomPrompt{}
	}

	var prompts []models.CustomPrompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		return []models.CustomPrompt{}
	}
	return prompts
}
