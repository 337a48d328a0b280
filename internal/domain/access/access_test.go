package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

func staff(ids ...uint) entity.Principal {
	return entity.Principal{UserID: 2, DisplayName: "staff", Role: entity.RoleUser, BranchIDs: ids, Authenticated: true}
}

func TestCanAccess_StaffOnlyAssignedBranches(t *testing.T) {
	p := staff(1, 3)
	for id := uint(1); id <= 5; id++ {
		want := id == 1 || id == 3
		assert.Equal(t, want, access.CanAccess(p, id), "branch %d", id)
	}
}

func TestCanAccess_AdminSeesEverything(t *testing.T) {
	admin := entity.Principal{UserID: 1, Role: entity.RoleAdmin, Authenticated: true}
	for _, id := range []uint{1, 2, 999} {
		assert.True(t, access.CanAccess(admin, id))
	}
	assert.True(t, access.Visible(admin).All)
}

func TestVisible_LegacyAssignmentCounts(t *testing.T) {
	u := &entity.User{ID: 4, Username: "eva", Role: entity.RoleUser, BranchIDs: []uint{2}}
	u.AttachLegacyBranch(5)

	scope := access.Visible(entity.PrincipalFor(u))
	assert.False(t, scope.All)
	assert.Equal(t, []uint{2, 5}, scope.IDs)
}

func TestVisible_EmptyAndAnonymous(t *testing.T) {
	assert.True(t, access.Visible(staff()).Empty())
	assert.False(t, access.CanAccess(staff(), 1))

	anon := entity.Anonymous()
	anon.Role = entity.RoleAdmin // unauthenticated role claims are ignored
	assert.True(t, access.Visible(anon).Empty())
}

func TestScope_Filter(t *testing.T) {
	branches := []*entity.Branch{{ID: 1, Name: "Teplice"}, {ID: 2, Name: "Děčín"}, {ID: 3, Name: "Ústí"}}
	got := access.Visible(staff(3, 1)).Filter(branches)
	assert.Len(t, got, 2)
	assert.Equal(t, "Teplice", got[0].Name)
	assert.Equal(t, "Ústí", got[1].Name)
}
