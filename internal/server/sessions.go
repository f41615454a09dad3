package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"newsbrief/internal/domain"
	"newsbrief/internal/session"
)

const defaultMaxSessions = 1024

// sessionEntry holds the two independent controllers of one browser
// session: one per summarization target.
type sessionEntry struct {
	url      *session.Controller
	text     *session.Controller
	lastSeen time.Time
}

func (e *sessionEntry) controller(mode domain.Mode) *session.Controller {
	if mode == domain.ModeText {
		return e.text
	}

	return e.url
}

// sessionStore keeps per-cookie session state in memory, bounded in
// count with oldest-seen eviction.
type sessionStore struct {
	mu         sync.Mutex
	entries    map[string]*sessionEntry
	runner     session.Runner
	maxEntries int
	now        func() time.Time
}

func newSessionStore(runner session.Runner, maxEntries int) *sessionStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxSessions
	}

	return &sessionStore{
		entries:    make(map[string]*sessionEntry),
		runner:     runner,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// get returns the entry for id, creating it on first sight. A new
// entry is stamped before capacity eviction runs so the newcomer is
// never its own victim.
func (s *sessionStore) get(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		entry = &sessionEntry{
			url:      session.NewController(s.runner),
			text:     session.NewController(s.runner),
			lastSeen: s.now(),
		}
		s.entries[id] = entry

		s.evictOldestLocked()

		return entry
	}

	entry.lastSeen = s.now()

	return entry
}

func (s *sessionStore) evictOldestLocked() {
	for len(s.entries) > s.maxEntries {
		var oldestID string
		var oldestSeen time.Time

		for id, entry := range s.entries {
			if oldestID == "" || entry.lastSeen.Before(oldestSeen) {
				oldestID = id
				oldestSeen = entry.lastSeen
			}
		}

		delete(s.entries, oldestID)
	}
}

func newSessionID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf[:]), nil
}
