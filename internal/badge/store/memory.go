package store

import (
	"context"
	"sync"
	"time"

	"insignia/internal/badge/models"
	"insignia/internal/sentinel"
)

// InMemory owns the profile table, the identity reverse index, and the two
// monotonic allocators (badge id, certification sequence). All mutations run
// under a single lock so batches commit all-or-nothing and ids are allocated
// in strictly increasing order, never reused.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[models.BadgeID]*models.Profile
	holders  map[models.Identity]models.BadgeID

	lastBadgeID  uint64
	certSequence uint64
}

// NewInMemory creates an empty badge store.
func NewInMemory() *InMemory {
	return &InMemory{
		profiles: make(map[models.BadgeID]*models.Profile),
		holders:  make(map[models.Identity]models.BadgeID),
	}
}

// IssueBatch creates one badge per draft as a single transaction: every draft
// is validated and staged before anything is written, so a failing draft
// leaves the table, the reverse index, and the id allocator untouched.
//
// Issuance does not check for an existing reverse-index entry; re-issuing to
// the same identity overwrites the entry and the prior badge stays reachable
// by id only.
func (s *InMemory) IssueBatch(_ context.Context, drafts []models.Draft, now time.Time) ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]*models.Profile, 0, len(drafts))
	nextID := s.lastBadgeID
	for _, d := range drafts {
		nextID++
		var (
			p   *models.Profile
			err error
		)
		if d.Role == models.RoleStudent {
			p, err = models.NewStudentProfile(models.BadgeID(nextID), d.Holder, now)
		} else {
			p, err = models.NewFacultyProfile(models.BadgeID(nextID), d.Holder, d.Role, d.ContentRef, now)
		}
		if err != nil {
			return nil, err
		}
		staged = append(staged, p)
	}

	for _, p := range staged {
		s.profiles[p.ID] = p
		s.holders[p.Holder] = p.ID
	}
	s.lastBadgeID = nextID

	out := make([]*models.Profile, len(staged))
	for i, p := range staged {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

// FindByID retrieves a badge profile by id. Returns a copy so callers cannot
// mutate the table outside the store's lock.
func (s *InMemory) FindByID(_ context.Context, badgeID models.BadgeID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[badgeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// FindByHolder resolves an identity to its badge via the reverse index.
func (s *InMemory) FindByHolder(_ context.Context, holder models.Identity) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	badgeID, ok := s.holders[holder]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.profiles[badgeID]
	return &cp, nil
}

// Certify marks a student badge certified, assigning the next certification
// sequence number and recording the grade. The sequence allocator advances
// only when the transition succeeds.
func (s *InMemory) Certify(_ context.Context, badgeID models.BadgeID, grade string, now time.Time) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[badgeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := p.Certify(s.certSequence+1, grade, now); err != nil {
		return nil, err
	}
	s.certSequence++
	cp := *p
	return &cp, nil
}

// Remove deletes the profile and its reverse-index entry atomically and
// returns the removed profile. The reverse entry is dropped only if it still
// points at this badge, so a later re-issue to the same identity is not
// clobbered when an orphaned badge is terminated.
func (s *InMemory) Remove(_ context.Context, badgeID models.BadgeID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[badgeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.profiles, badgeID)
	if current, ok := s.holders[p.Holder]; ok && current == badgeID {
		delete(s.holders, p.Holder)
	}
	cp := *p
	return &cp, nil
}

// Count returns the number of live badges.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}

// LastBadgeID exposes the id allocator's high-water mark for diagnostics and
// tests asserting that failed batches do not advance it.
func (s *InMemory) LastBadgeID() models.BadgeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.BadgeID(s.lastBadgeID)
}
