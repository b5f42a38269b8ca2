// Package repository implements the database access layer for the kanban tracker.
// This file implements the card repository. Every statement carries an
// "organization = $n" predicate; the organization always comes from the caller's
// session, never from request input.
package repository

import (
	"context"

	"github.com/desy0305/e-KanBan2clicks/internal/database"
	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
)

// CardRepository handles all database operations on kanban_cards.
type CardRepository struct{}

// NewCardRepository creates and returns a new CardRepository instance.
func NewCardRepository() *CardRepository {
	return &CardRepository{}
}

// ListByOrganization returns every card owned by the organization in insertion order.
// There is no pagination; the full set is returned.
//
// Returns:
//   - []models.Card: Cards of the organization (empty, non-nil slice if none)
//   - error: StoreError if the query fails
func (r *CardRepository) ListByOrganization(ctx context.Context, organization string) ([]models.Card, error) {
	query := `
		SELECT id, item, quantity, status, location, supplier, organization
		FROM kanban_cards
		WHERE organization = $1
		ORDER BY id
	`

	rows, err := database.DB.Query(ctx, query, organization)
	if err != nil {
		return nil, apperrors.Store("cards.list", err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(
			&card.ID, &card.Item, &card.Quantity, &card.Status,
			&card.Location, &card.Supplier, &card.Organization,
		); err != nil {
			return nil, apperrors.Store("cards.list", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("cards.list", err)
	}

	return cards, nil
}

// Create inserts a card. card.Organization must already be stamped from the session.
//
// Side Effects: Populates card.ID with the database-generated value
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO kanban_cards (item, quantity, status, location, supplier, organization)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := database.DB.QueryRow(ctx, query,
		card.Item, card.Quantity, card.Status, card.Location, card.Supplier, card.Organization,
	).Scan(&card.ID)

	return apperrors.Store("cards.create", err)
}

// UpdateStatus replaces the status of one card of the organization.
// Any status string may replace any other.
//
// Returns:
//   - error: ErrNotFoundOrUnauthorized if no row of the organization has this id
func (r *CardRepository) UpdateStatus(ctx context.Context, organization string, id int, status string) error {
	query := `UPDATE kanban_cards SET status = $1 WHERE id = $2 AND organization = $3`

	tag, err := database.DB.Exec(ctx, query, status, id, organization)
	if err != nil {
		return apperrors.Store("cards.update_status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFoundOrUnauthorized
	}
	return nil
}

// Delete physically removes one card of the organization.
//
// Returns:
//   - error: ErrNotFoundOrUnauthorized if no row of the organization has this id
func (r *CardRepository) Delete(ctx context.Context, organization string, id int) error {
	query := `DELETE FROM kanban_cards WHERE id = $1 AND organization = $2`

	tag, err := database.DB.Exec(ctx, query, id, organization)
	if err != nil {
		return apperrors.Store("cards.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFoundOrUnauthorized
	}
	return nil
}

// ListDistinctItems returns the distinct item names among the organization's cards.
func (r *CardRepository) ListDistinctItems(ctx context.Context, organization string) ([]string, error) {
	query := `SELECT DISTINCT item FROM kanban_cards WHERE organization = $1 ORDER BY item`

	rows, err := database.DB.Query(ctx, query, organization)
	if err != nil {
		return nil, apperrors.Store("cards.items", err)
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, apperrors.Store("cards.items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("cards.items", err)
	}

	return items, nil
}
