package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

func TestUser_LegacyBranchFoldsIntoCanonicalSet(t *testing.T) {
	u := &entity.User{ID: 1, Username: "jana", BranchIDs: []uint{3, 1}}
	u.AttachLegacyBranch(2)

	legacy, ok := u.LegacyBranchID()
	assert.True(t, ok)
	assert.Equal(t, uint(2), legacy)
	assert.Equal(t, []uint{1, 2, 3}, u.BranchIDs)

	u.SetBranches([]uint{5, 5, 0, 4})
	_, ok = u.LegacyBranchID()
	assert.False(t, ok, "writing assignments drops the legacy field")
	assert.Equal(t, []uint{4, 5}, u.BranchIDs)
}

func TestPrincipal_Actor(t *testing.T) {
	assert.Equal(t, entity.SystemActor, entity.Anonymous().Actor())

	p := entity.PrincipalFor(&entity.User{ID: 7, Username: "pavel", Role: entity.RoleUser})
	assert.Equal(t, "pavel", p.Actor())

	p = entity.PrincipalFor(&entity.User{ID: 7, Username: "pavel", Name: "Pavel Novák", Role: entity.RoleAdmin})
	assert.Equal(t, "Pavel Novák", p.Actor())
	assert.True(t, p.IsAdmin())
}

func TestOrder_Freshness(t *testing.T) {
	today := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	o := &entity.Order{Status: entity.OrderActive, OrderDate: today.AddDate(0, 0, -7)}
	assert.Equal(t, entity.Fresh, o.Freshness(today))

	o.OrderDate = today.AddDate(0, 0, -8)
	assert.Equal(t, entity.Stale, o.Freshness(today))

	o.Status = entity.OrderIssued
	assert.Equal(t, entity.Freshness(""), o.Freshness(today))

	assert.Equal(t, time.Date(2026, 5, 13, 0, 0, 0, 0, time.UTC), entity.FreshCutoff(today))
}

func TestComplaint_SetStatusClearsDiscount(t *testing.T) {
	d := 15.0
	c := &entity.Complaint{Status: entity.ComplaintRejected, DiscountPercent: &d}
	assert.True(t, c.Discounted())

	c.SetStatus(entity.ComplaintRejected)
	assert.NotNil(t, c.DiscountPercent)

	c.SetStatus(entity.ComplaintExchanged)
	assert.Nil(t, c.DiscountPercent)
	assert.False(t, c.Discounted())
}
