// Package testutil provides in-memory stores and an HTTP test client for
// exercising the full route table without PostgreSQL.
package testutil

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/desy0305/e-KanBan2clicks/internal/repository"
)

// UserStore is an in-memory repository.UserStore.
type UserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[string]models.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[string]models.User)}
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return apperrors.ErrDuplicateUsername
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.Username] = *user
	return nil
}

// Get returns a copy of the stored user.
func (s *UserStore) Get(username string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	return u, ok
}

// CardStore is an in-memory repository.CardStore with the same
// organization scoping as the SQL repository.
type CardStore struct {
	mu     sync.Mutex
	nextID int
	cards  map[int]models.Card

	// Err, when set, is returned by every method.
	Err error
}

// NewCardStore creates an empty CardStore. Ids start at 1.
func NewCardStore() *CardStore {
	return &CardStore{nextID: 1, cards: make(map[int]models.Card)}
}

func (s *CardStore) ListByOrganization(_ context.Context, organization string) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []models.Card{}
	for _, c := range s.cards {
		if c.Organization == organization {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *CardStore) Create(_ context.Context, card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	card.ID = s.nextID
	s.nextID++
	s.cards[card.ID] = *card
	return nil
}

func (s *CardStore) UpdateStatus(_ context.Context, organization string, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	c, ok := s.cards[id]
	if !ok || c.Organization != organization {
		return apperrors.ErrNotFoundOrUnauthorized
	}
	c.Status = status
	s.cards[id] = c
	return nil
}

func (s *CardStore) Delete(_ context.Context, organization string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	c, ok := s.cards[id]
	if !ok || c.Organization != organization {
		return apperrors.ErrNotFoundOrUnauthorized
	}
	delete(s.cards, id)
	return nil
}

func (s *CardStore) ListDistinctItems(_ context.Context, organization string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	seen := map[string]bool{}
	out := []string{}
	for _, c := range s.cards {
		if c.Organization == organization && !seen[c.Item] {
			seen[c.Item] = true
			out = append(out, c.Item)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Count returns the number of stored cards across all organizations.
func (s *CardStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// Get returns a copy of the stored card.
func (s *CardStore) Get(id int) (models.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	return c, ok
}

var (
	_ repository.UserStore = (*UserStore)(nil)
	_ repository.CardStore = (*CardStore)(nil)
)
