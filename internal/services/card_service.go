package services

import (
	"context"
	"math"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/desy0305/e-KanBan2clicks/internal/repository"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
)

// CardService implements the organization-scoped card operations.
// Every method takes the caller's Identity; the organization used in storage
// calls is always identity.Organization.
type CardService struct {
	cards      repository.CardStore
	validation *security.ValidationService
}

// NewCardService creates a CardService over the given store.
func NewCardService(cards repository.CardStore, validation *security.ValidationService) *CardService {
	return &CardService{cards: cards, validation: validation}
}

// List returns all cards of the caller's organization.
func (s *CardService) List(ctx context.Context, id models.Identity) ([]models.Card, error) {
	if id.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}
	return s.cards.ListByOrganization(ctx, id.Organization)
}

// Add validates the form and inserts a card stamped with the caller's organization.
// Fractional quantities are truncated toward zero.
func (s *CardService) Add(ctx context.Context, id models.Identity, form models.CardForm) (*models.Card, error) {
	if id.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.validation.ValidateCard(form); err != nil {
		return nil, err
	}

	q := math.Trunc(*form.Quantity)
	if q > math.MaxInt32 {
		return nil, apperrors.NewValidationError("quantity", security.MsgInvalidQuantity)
	}

	card := &models.Card{
		Item:         form.Item,
		Quantity:     int(q),
		Status:       form.Status,
		Location:     form.Location,
		Supplier:     form.Supplier,
		Organization: id.Organization,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateStatus sets the status of one card of the caller's organization.
// A card that does not exist and a card of another organization both yield
// ErrNotFoundOrUnauthorized.
func (s *CardService) UpdateStatus(ctx context.Context, id models.Identity, cardID int, form models.StatusUpdateForm) error {
	if id.IsZero() {
		return apperrors.ErrUnauthorized
	}
	if err := s.validation.ValidateStatusUpdate(form); err != nil {
		return err
	}
	if !validCardID(cardID) {
		return apperrors.ErrNotFoundOrUnauthorized
	}
	return s.cards.UpdateStatus(ctx, id.Organization, cardID, form.Status)
}

// Delete removes one card of the caller's organization.
func (s *CardService) Delete(ctx context.Context, id models.Identity, cardID int) error {
	if id.IsZero() {
		return apperrors.ErrUnauthorized
	}
	if !validCardID(cardID) {
		return apperrors.ErrNotFoundOrUnauthorized
	}
	return s.cards.Delete(ctx, id.Organization, cardID)
}

// Items returns the distinct item names of the caller's organization, sorted.
func (s *CardService) Items(ctx context.Context, id models.Identity) ([]string, error) {
	if id.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}
	items, err := s.cards.ListDistinctItems(ctx, id.Organization)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// validCardID reports whether id fits the int4 key column.
func validCardID(id int) bool {
	return id > 0 && id <= math.MaxInt32
}
