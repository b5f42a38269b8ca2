package repository

import (
	"context"

	"github.com/desy0305/e-KanBan2clicks/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// UserStore is the credential store used by the session authenticator.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// CardStore is the card repository. Every method takes the caller's organization
// and only ever touches rows of that organization.
type CardStore interface {
	ListByOrganization(ctx context.Context, organization string) ([]models.Card, error)
	Create(ctx context.Context, card *models.Card) error
	UpdateStatus(ctx context.Context, organization string, id int, status string) error
	Delete(ctx context.Context, organization string, id int) error
	ListDistinctItems(ctx context.Context, organization string) ([]string, error)
}

var (
	_ UserStore = (*UserRepository)(nil)
	_ CardStore = (*CardRepository)(nil)
)
