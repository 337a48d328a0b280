package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchdesk/branchdesk-api/internal/domain"
)

func TestValidationError_MatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("create complaint: %w", domain.ErrWarrantyExpired)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrWarrantyExpired)
	assert.NotErrorIs(t, err, domain.ErrInvalidAction)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "purchase_date", ve.Field)
}

func TestPersistence_KeepsDomainKinds(t *testing.T) {
	assert.Same(t, domain.ErrNotFound, domain.Persistence("op", domain.ErrNotFound))
	assert.Nil(t, domain.Persistence("op", nil))

	wrapped := domain.Persistence("orders.create", errors.New("disk full"))
	assert.ErrorIs(t, wrapped, domain.ErrPersistence)
	assert.Contains(t, wrapped.Error(), "orders.create")
}

func TestNormalizePhone(t *testing.T) {
	got, err := domain.NormalizePhone("phone", " 123456789 ")
	require.NoError(t, err)
	assert.Equal(t, "+420123456789", got)
	assert.Equal(t, "123456789", domain.LocalPhone(got))

	for _, bad := range []string{"12345", "1234567890", "12345678a", "+420123456789", ""} {
		_, err := domain.NormalizePhone("phone", bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, bad)
	}
}

func TestRequiredText(t *testing.T) {
	_, err := domain.RequiredText("customer", "   ", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = domain.RequiredText("customer", "ábcdefghijk", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	v, err := domain.RequiredText("customer", "  Jana  ", 10)
	require.NoError(t, err)
	assert.Equal(t, "Jana", v)
}
