package entity

import (
	"sort"
	"time"
)

// Valid roles for User.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// SystemActor is recorded as the actor of changes made without an authenticated principal.
const SystemActor = "system"

// User a staff account. BranchIDs is the canonical assignment set; it already
// contains the legacy single-branch assignment if one was stored.
type User struct {
	ID           uint
	Username     string
	PasswordHash string // bcrypt; legacy rows may still hold plaintext until next login
	PIN          string // optional numeric quick-login code, "" when unset
	Role         string
	Name         string
	BranchIDs    []uint
	CreatedAt    time.Time

	legacyBranchID uint
}

// IsAdmin reports whether the user bypasses branch restrictions.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// DisplayName is the name recorded in audit entries.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// LegacyBranchID returns the single-branch assignment older rows carry, if any.
// It is read-only: assignments are written through BranchIDs.
func (u *User) LegacyBranchID() (uint, bool) {
	return u.legacyBranchID, u.legacyBranchID != NoBranch
}

// AttachLegacyBranch is used when loading a stored user: it records the legacy
// assignment and folds it into BranchIDs.
func (u *User) AttachLegacyBranch(id uint) {
	if id == NoBranch {
		return
	}
	u.legacyBranchID = id
	u.BranchIDs = UniqueIDs(append(u.BranchIDs, id))
}

// SetBranches replaces the assignment set. The legacy assignment is dropped
// because it now lives in the canonical set.
func (u *User) SetBranches(ids []uint) {
	u.BranchIDs = UniqueIDs(ids)
	u.legacyBranchID = NoBranch
}

// UniqueIDs sorts ids and removes duplicates and NoBranch.
func UniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == NoBranch {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Principal is the authenticated caller as seen by the use cases.
type Principal struct {
	UserID        uint
	Username      string
	DisplayName   string
	Role          string
	BranchIDs     []uint
	Authenticated bool
}

// PrincipalFor builds the principal of a loaded user.
func PrincipalFor(u *User) Principal {
	return Principal{
		UserID:        u.ID,
		Username:      u.Username,
		DisplayName:   u.DisplayName(),
		Role:          u.Role,
		BranchIDs:     append([]uint(nil), u.BranchIDs...),
		Authenticated: true,
	}
}

// Anonymous is the principal of unauthenticated callers: no branches, actor "system".
func Anonymous() Principal { return Principal{} }

// IsAdmin reports whether the principal bypasses branch restrictions.
func (p Principal) IsAdmin() bool { return p.Authenticated && p.Role == RoleAdmin }

// Actor is the name written to audit entries.
func (p Principal) Actor() string {
	if !p.Authenticated || p.DisplayName == "" {
		return SystemActor
	}
	return p.DisplayName
}
