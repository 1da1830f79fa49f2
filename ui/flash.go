package ui

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	flashCookieName = "backoffice_flash"
	flashTTL        = 10 * time.Minute
)

type flashEntry struct {
	messages []string
	created  time.Time
}

// FlashStore keeps user messages across one redirect. The browser holds only
// an opaque id in a cookie.
type FlashStore struct {
	mu      sync.Mutex
	entries map[string]flashEntry
	now     func() time.Time
}

// NewFlashStore creates an empty store
func NewFlashStore() *FlashStore {
	return &FlashStore{
		entries: make(map[string]flashEntry),
		now:     time.Now,
	}
}

// Save stores messages and points the client at them. It must be called
// before the response is written.
func (s *FlashStore) Save(w http.ResponseWriter, path string, messages []string) {
	if len(messages) == 0 {
		return
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.pruneLocked()
	s.entries[id] = flashEntry{
		messages: append([]string{}, messages...),
		created:  s.now(),
	}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    id,
		Path:     path,
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns and forgets the messages the request's cookie points at
func (s *FlashStore) Pop(w http.ResponseWriter, r *http.Request, path string) []string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if _, err := uuid.Parse(cookie.Value); err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[cookie.Value]
	if !ok {
		return nil
	}
	delete(s.entries, cookie.Value)

	if s.now().Sub(entry.created) > flashTTL {
		return nil
	}
	return entry.messages
}

// pruneLocked drops entries whose redirect was never followed
func (s *FlashStore) pruneLocked() {
	cutoff := s.now().Add(-flashTTL)
	for id, entry := range s.entries {
		if entry.created.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}
