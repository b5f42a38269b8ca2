package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestStore_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("connection reset")

	err := apperrors.Store("cards.list", cause)

	assert.True(t, apperrors.IsStore(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cards.list: connection reset", err.Error())
}

func TestStore_NilStaysNil(t *testing.T) {
	assert.NoError(t, apperrors.Store("cards.list", nil))
}

func TestStore_DoesNotDoubleWrap(t *testing.T) {
	inner := apperrors.Store("cards.create", errors.New("boom"))
	outer := apperrors.Store("cards.add", fmt.Errorf("context: %w", inner))

	var se *apperrors.StoreError
	assert.True(t, errors.As(outer, &se))
	assert.Equal(t, "cards.create", se.Op)
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("add card: %w", apperrors.NewValidationError("quantity", "Invalid quantity value"))

	assert.True(t, apperrors.IsValidation(err))
	assert.False(t, apperrors.IsStore(err))

	var ve *apperrors.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "quantity", ve.Field)
	assert.Equal(t, "Invalid quantity value", ve.Error())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"duplicate username", apperrors.ErrDuplicateUsername, apperrors.MsgDuplicateUsername},
		{"invalid credentials", apperrors.ErrInvalidCredentials, apperrors.MsgInvalidCredentials},
		{"unauthorized", apperrors.ErrUnauthorized, apperrors.MsgUnauthorized},
		{"wrapped card miss", fmt.Errorf("delete card 7: %w", apperrors.ErrNotFoundOrUnauthorized), apperrors.MsgNotFoundOrUnauthorized},
		{"validation", fmt.Errorf("add: %w", apperrors.NewValidationError("status", "Missing status")), "Missing status"},
		{"store", apperrors.Store("cards.list", errors.New("timeout")), "cards.list: timeout"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.Message(tt.err))
		})
	}
}

func TestSentinelsFollowErrorStringConvention(t *testing.T) {
	for _, err := range []error{
		apperrors.ErrDuplicateUsername,
		apperrors.ErrInvalidCredentials,
		apperrors.ErrUnauthorized,
		apperrors.ErrNotFoundOrUnauthorized,
	} {
		msg := err.Error()
		assert.Equal(t, strings.ToLower(msg[:1]), msg[:1], msg)
		assert.False(t, strings.HasSuffix(msg, "."), msg)
	}
}
