package warranty_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/branchdesk/branchdesk-api/internal/domain/warranty"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEnd_TwoYears(t *testing.T) {
	assert.Equal(t, date(2026, time.January, 10), warranty.End(date(2024, time.January, 10)))
}

func TestEnd_LeapDayClampsToFeb28(t *testing.T) {
	assert.Equal(t, date(2026, time.February, 28), warranty.End(date(2024, time.February, 29)))
}

func TestValid_Boundary(t *testing.T) {
	purchase := date(2024, time.January, 10)
	assert.True(t, warranty.Valid(purchase, date(2025, time.June, 1)))
	assert.True(t, warranty.Valid(purchase, date(2026, time.January, 10)), "last day is still covered")
	assert.False(t, warranty.Valid(purchase, date(2026, time.January, 11)))
}

func TestValid_IgnoresTimeOfDay(t *testing.T) {
	purchase := date(2024, time.January, 10)
	lateEvening := time.Date(2026, time.January, 10, 23, 59, 0, 0, time.UTC)
	assert.True(t, warranty.Valid(purchase, lateEvening))
}
