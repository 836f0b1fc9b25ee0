// Package store keeps the development backend's data in memory.
package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"lockme/internal/devbackend/models"
	id "lockme/pkg/domain"
	dErrors "lockme/pkg/domain-errors"
)

// Memory is a concurrency-safe in-memory store.
type Memory struct {
	mu          sync.RWMutex
	users       map[id.UserID]*models.User
	byEmail     map[string]id.UserID
	tribes      map[id.TribeID]*models.Tribe
	memberships map[id.TribeID][]models.Membership
	nextUserID  id.UserID
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[id.UserID]*models.User),
		byEmail:     make(map[string]id.UserID),
		tribes:      make(map[id.TribeID]*models.Tribe),
		memberships: make(map[id.TribeID][]models.Membership),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores u. A zero ID is assigned the next free one.
func (s *Memory) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(u.Email)
	if key == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if _, exists := s.byEmail[key]; exists {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email already registered")
	}
	if u.ID.IsNil() {
		u.ID = s.nextUserID + 1
	}
	if _, exists := s.users[u.ID]; exists {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id already in use")
	}
	s.nextUserID = max(s.nextUserID, u.ID)

	stored := u
	s.users[u.ID] = &stored
	s.byEmail[key] = u.ID
	out := stored
	return &out, nil
}

func (s *Memory) FindUserByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	out := *u
	return &out, nil
}

func (s *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	out := *s.users[userID]
	return &out, nil
}

// ListUsers returns every user, newest first.
func (s *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b models.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Memory) CreateTribe(_ context.Context, t models.Tribe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "tribe id is required")
	}
	if _, exists := s.tribes[t.ID]; exists {
		return dErrors.New(dErrors.CodeBadRequest, "tribe already exists")
	}
	stored := t
	s.tribes[t.ID] = &stored
	return nil
}

func (s *Memory) FindTribe(_ context.Context, tribeID id.TribeID) (*models.Tribe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tribes[tribeID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "tribe not found")
	}
	out := *t
	return &out, nil
}

// ListTribes returns every tribe ordered by id.
func (s *Memory) ListTribes(_ context.Context) ([]models.Tribe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tribe, 0, len(s.tribes))
	for _, t := range s.tribes {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b models.Tribe) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// AddMember records a membership. Joining twice is a no-op.
func (s *Memory) AddMember(_ context.Context, m models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tribes[m.TribeID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "tribe not found")
	}
	if _, ok := s.users[m.UserID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	for _, existing := range s.memberships[m.TribeID] {
		if existing.UserID == m.UserID {
			return nil
		}
	}
	s.memberships[m.TribeID] = append(s.memberships[m.TribeID], m)
	return nil
}

// ListMembers returns the memberships of one tribe in join order.
func (s *Memory) ListMembers(_ context.Context, tribeID id.TribeID) ([]models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tribes[tribeID]; !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "tribe not found")
	}
	return slices.Clone(s.memberships[tribeID]), nil
}

// CountMemberships returns how many tribes each user belongs to.
func (s *Memory) CountMemberships(_ context.Context) (map[id.UserID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.UserID]int)
	for _, members := range s.memberships {
		for _, m := range members {
			out[m.UserID]++
		}
	}
	return out, nil
}
