package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/models"
	"github.com/desy0305/e-KanBan2clicks/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardColumns = []string{"id", "item", "quantity", "status", "location", "supplier", "organization"}

// TestCardRepository_ListByOrganization verifies the organization predicate is bound
// to the caller's organization and rows come back in order.
func TestCardRepository_ListByOrganization(t *testing.T) {
	t.Run("returns organization cards", func(t *testing.T) {
		mock := newMockDB(t)
		rows := pgxmock.NewRows(cardColumns).
			AddRow(1, "Widget", 5, "Full", "L1", "S1", "A").
			AddRow(3, "Bolt", 100, "In Use", "L2", "S2", "A")

		mock.ExpectQuery(regexp.QuoteMeta("FROM kanban_cards WHERE organization = $1")).
			WithArgs("A").
			WillReturnRows(rows)

		cards, err := repository.NewCardRepository().ListByOrganization(context.Background(), "A")

		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, models.Card{
			ID: 1, Item: "Widget", Quantity: 5, Status: "Full",
			Location: "L1", Supplier: "S1", Organization: "A",
		}, cards[0])
		assert.Equal(t, 3, cards[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty organization yields empty slice", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM kanban_cards WHERE organization = $1")).
			WithArgs("B").
			WillReturnRows(pgxmock.NewRows(cardColumns))

		cards, err := repository.NewCardRepository().ListByOrganization(context.Background(), "B")

		require.NoError(t, err)
		assert.NotNil(t, cards, "empty result must encode as [] not null")
		assert.Empty(t, cards)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery("FROM kanban_cards").
			WithArgs("A").
			WillReturnError(errors.New("relation does not exist"))

		cards, err := repository.NewCardRepository().ListByOrganization(context.Background(), "A")

		assert.Nil(t, cards)
		assert.True(t, apperrors.IsStore(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestCardRepository_Create verifies the insert carries the stamped organization.
func TestCardRepository_Create(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO kanban_cards").
		WithArgs("Widget", 5, "Full", "L1", "S1", "A").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))

	card := &models.Card{Item: "Widget", Quantity: 5, Status: "Full", Location: "L1", Supplier: "S1", Organization: "A"}
	err := repository.NewCardRepository().Create(context.Background(), card)

	require.NoError(t, err)
	assert.Equal(t, 1, card.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCardRepository_UpdateStatus verifies zero matched rows is reported as
// NotFoundOrUnauthorized, whether the card is missing or owned by another organization.
func TestCardRepository_UpdateStatus(t *testing.T) {
	updateSQL := regexp.QuoteMeta("UPDATE kanban_cards SET status = $1 WHERE id = $2 AND organization = $3")

	tests := []struct {
		name        string
		rows        int64
		execErr     error
		wantErr     error
		expectStore bool
	}{
		{name: "own card", rows: 1},
		{name: "foreign or missing card", rows: 0, wantErr: apperrors.ErrNotFoundOrUnauthorized},
		{name: "database failure", execErr: errors.New("deadlock detected"), expectStore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			exp := mock.ExpectExec(updateSQL).WithArgs("In Use", 1, "A")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))
			}

			err := repository.NewCardRepository().UpdateStatus(context.Background(), "A", 1, "In Use")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.expectStore:
				assert.True(t, apperrors.IsStore(err))
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestCardRepository_Delete verifies the delete predicate and the conflated miss.
func TestCardRepository_Delete(t *testing.T) {
	deleteSQL := regexp.QuoteMeta("DELETE FROM kanban_cards WHERE id = $1 AND organization = $2")

	t.Run("own card", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectExec(deleteSQL).WithArgs(7, "A").WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err := repository.NewCardRepository().Delete(context.Background(), "A", 7)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("card of another organization", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectExec(deleteSQL).WithArgs(7, "B").WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repository.NewCardRepository().Delete(context.Background(), "B", 7)

		assert.ErrorIs(t, err, apperrors.ErrNotFoundOrUnauthorized)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestCardRepository_ListDistinctItems verifies distinct item names are scoped by organization.
func TestCardRepository_ListDistinctItems(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT item FROM kanban_cards WHERE organization = $1")).
		WithArgs("A").
		WillReturnRows(pgxmock.NewRows([]string{"item"}).AddRow("Bolt").AddRow("Widget"))

	items, err := repository.NewCardRepository().ListDistinctItems(context.Background(), "A")

	require.NoError(t, err)
	assert.Equal(t, []string{"Bolt", "Widget"}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
