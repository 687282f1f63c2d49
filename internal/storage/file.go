package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const (
	filePrefix = "candidate_"
	fileExt    = ".json"
)

// FileStore keeps one JSON document per candidate in a results directory.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the directory if it is missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(candidateID int64) string {
	return filepath.Join(s.dir, filePrefix+strconv.FormatInt(candidateID, 10)+fileExt)
}

// Commit writes the record to a temp file and renames it into place,
// so readers see either the old document or the new one.
func (s *FileStore) Commit(ctx context.Context, c Candidate, responses []Response) error {
	if err := ValidateRecord(c, responses); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(Record{Candidate: c, Responses: responses}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, filePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path(c.ID)); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func (s *FileStore) load(candidateID int64) (*Record, error) {
	data, err := os.ReadFile(s.path(candidateID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record %d: %w", candidateID, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %d: %w", candidateID, err)
	}
	return &rec, nil
}

func (s *FileStore) Find(ctx context.Context, candidateID int64) (*Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.load(candidateID)
	if err != nil {
		return nil, err
	}
	return &rec.Candidate, nil
}

func (s *FileStore) Responses(ctx context.Context, candidateID int64) ([]Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.load(candidateID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.Responses, nil
}

func (s *FileStore) Query(ctx context.Context, f Filter) ([]Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read results dir %s: %w", s.dir, err)
	}

	var out []Candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || filepath.Ext(name) != fileExt {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt), 10, 64)
		if err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.load(id)
		if err != nil {
			return nil, err
		}
		if f.Matches(rec.Candidate) {
			out = append(out, rec.Candidate)
		}
	}
	sortCandidates(out, f)
	return out, nil
}

func (s *FileStore) Close() error { return nil }
