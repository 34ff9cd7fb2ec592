package guardian

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/models"
)

// DraftStore keeps at most one in-progress assessment per user. Drafts live
// only in this process and expire after ttl without updates.
type DraftStore struct {
	mu      sync.Mutex
	drafts  map[string]*Wizard
	ttl     time.Duration
	now     clock.Clock
	entropy io.Reader
}

// NewDraftStore creates a draft store
func NewDraftStore(ttl time.Duration, now clock.Clock) *DraftStore {
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DraftStore{
		drafts:  make(map[string]*Wizard),
		ttl:     ttl,
		now:     now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// Create starts a new assessment for userID, replacing any existing one
func (s *DraftStore) Create(userID string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft id: %w", err)
	}
	s.sweep(now)

	w := New(id.String(), userID, now)
	s.drafts[userID] = w
	return w.clone(), nil
}

// Get returns a copy of the user's draft with the given id
func (s *DraftStore) Get(userID, id string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	return w.clone(), nil
}

// Current returns a copy of the user's draft, whatever its id
func (s *DraftStore) Current(userID string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.drafts[userID]
	if !ok || s.expired(w, s.now()) {
		delete(s.drafts, userID)
		return nil, models.ErrDraftNotFound
	}
	return w.clone(), nil
}

// Mutate applies fn to the stored draft under the store lock. fn must not
// block. The draft is only changed when fn succeeds.
func (s *DraftStore) Mutate(userID, id string, fn func(w *Wizard) error) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	next := w.clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.drafts[userID] = next
	return next.clone(), nil
}

// Take removes and returns the draft, so it can be committed at most once
func (s *DraftStore) Take(userID, id string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	delete(s.drafts, userID)
	return w, nil
}

// Restore puts back a taken draft unless the user has started another one
func (s *DraftStore) Restore(w *Wizard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[w.UserID]; !ok {
		s.drafts[w.UserID] = w
	}
}

// Delete discards the user's draft
func (s *DraftStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
}

// Len returns the number of live drafts
func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	return len(s.drafts)
}

func (s *DraftStore) lookup(userID, id string) (*Wizard, error) {
	w, ok := s.drafts[userID]
	if !ok || w.ID != id {
		return nil, fmt.Errorf("draft %s: %w", id, models.ErrDraftNotFound)
	}
	if s.expired(w, s.now()) {
		delete(s.drafts, userID)
		return nil, fmt.Errorf("draft %s expired: %w", id, models.ErrDraftNotFound)
	}
	return w, nil
}

func (s *DraftStore) expired(w *Wizard, now time.Time) bool {
	return s.ttl > 0 && now.Sub(w.UpdatedAt) > s.ttl
}

func (s *DraftStore) sweep(now time.Time) {
	for userID, w := range s.drafts {
		if s.expired(w, now) {
			delete(s.drafts, userID)
		}
	}
}
