// Package library persists a profile's stories, the pending-purchase
// snapshot and the reading bookmark under one directory. All writes
// complete before the triggering operation returns.
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"cuentomagico/internal/story"
)

const (
	libraryFile  = "library.json"
	pendingFile  = "pending_story.json"
	bookmarkFile = "current_page"
)

// Store is the durable per-profile library. Corrupt content never
// propagates: it is logged and degrades to an empty collection.
type Store struct {
	dir     string
	mu      sync.Mutex
	stories []story.Story
	log     zerolog.Logger
}

// Open loads (or initializes) the store rooted at dir.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure library dir: %w", err)
	}
	s := &Store{dir: dir, log: log}
	s.stories = s.load()
	return s, nil
}

func (s *Store) load() []story.Story {
	data, err := os.ReadFile(filepath.Join(s.dir, libraryFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error().Err(err).Msg("reading library file")
		}
		return nil
	}
	var stories []story.Story
	if err := json.Unmarshal(data, &stories); err != nil {
		s.log.Error().Err(err).Msg("corrupt library file, starting empty")
		return nil
	}
	return stories
}

func (s *Store) save() error {
	data, err := json.Marshal(s.stories)
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, libraryFile), data, 0o644); err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	return nil
}

// Add stores a story, writing through synchronously. Adding an id that
// already exists is a no-op.
func (s *Store) Add(st story.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.stories {
		if existing.ID == st.ID {
			return nil
		}
	}
	s.stories = append(s.stories, st)
	return s.save()
}

// Delete removes a story by id and writes through. Unknown ids are a
// no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.stories[:0]
	for _, st := range s.stories {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	s.stories = kept
	return s.save()
}

// Get returns the stored story with the given id.
func (s *Store) Get(id string) (story.Story, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stories {
		if st.ID == id {
			return st, true
		}
	}
	return story.Story{}, false
}

// List returns the stories in display order: reverse chronological by
// creation time, id as a stable tie-break.
func (s *Store) List() []story.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]story.Story, len(s.stories))
	copy(out, s.stories)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports the number of stored stories.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stories)
}

// SavePending snapshots the in-progress story across the payment
// redirect.
func (s *Store) SavePending(st story.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode pending story: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, pendingFile), data, 0o644); err != nil {
		return fmt.Errorf("write pending story: %w", err)
	}
	return nil
}

// TakePending returns the pending snapshot, if any, and clears it. A
// corrupt snapshot is logged and treated as absent.
func (s *Store) TakePending() *story.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, pendingFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	_ = os.Remove(path)
	var st story.Story
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Error().Err(err).Msg("corrupt pending story, discarding")
		return nil
	}
	return &st
}

// SetBookmark records the current reading page.
func (s *Store) SetBookmark(page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(filepath.Join(s.dir, bookmarkFile), []byte(strconv.Itoa(page)), 0o644); err != nil {
		return fmt.Errorf("write bookmark: %w", err)
	}
	return nil
}

// Bookmark returns the saved reading page, or 0 when absent or corrupt.
// It is a cold-start resume hint only; in-memory state is authoritative.
func (s *Store) Bookmark() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(filepath.Join(s.dir, bookmarkFile))
	if err != nil {
		return 0
	}
	page, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || page < 0 {
		return 0
	}
	return page
}
