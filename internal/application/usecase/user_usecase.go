package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

// User field rules.
const (
	UserNameMin       = 2
	UserNameMax       = 100
	UsernameMax       = 80
	PasswordMinLength = 6
)

var pinPattern = regexp.MustCompile(`^\d{4,10}$`)

// UserUseCase admin management of staff accounts.
type UserUseCase struct {
	repos repository.Repos
	tx    repository.TxRunner
	clock clock.Clock
	log   *logger.Logger
}

// NewUserUseCase builds the use case.
func NewUserUseCase(repos repository.Repos, tx repository.TxRunner, clk clock.Clock, log *logger.Logger) *UserUseCase {
	return &UserUseCase{repos: repos, tx: tx, clock: clk, log: log.Component("users")}
}

// List returns every account.
func (uc *UserUseCase) List(ctx context.Context, p entity.Principal) (*dto.UserListResponse, error) {
	if err := requireAdmin(uc.log, p, "list users"); err != nil {
		return nil, err
	}
	list, err := uc.repos.Users.List(ctx)
	if err != nil {
		return nil, domain.Persistence("users.List", err)
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items}, nil
}

// GetByID returns one account.
func (uc *UserUseCase) GetByID(ctx context.Context, p entity.Principal, id uint) (*dto.UserResponse, error) {
	if err := requireAdmin(uc.log, p, "read user"); err != nil {
		return nil, err
	}
	u, err := uc.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("users.GetByID", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return entityToUserResponse(u), nil
}

// Create adds an account. The username defaults to the lower-cased name with
// underscores; the password defaults to the PIN and must reach PasswordMinLength.
func (uc *UserUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(uc.log, p, "create user"); err != nil {
		return nil, err
	}
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	pin, err := validPIN(in.PIN, true)
	if err != nil {
		return nil, err
	}
	username := textnorm.Clean(in.Username)
	if username == "" {
		username = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	if username, err = domain.RequiredText("username", username, UsernameMax); err != nil {
		return nil, err
	}
	password := strings.TrimSpace(in.Password)
	if password == "" {
		password = pin
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	role, err := validRole(in.Role)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Username: username, PasswordHash: hash, PIN: pin, Role: role, Name: name}
	err = uc.tx.Run(ctx, func(repos repository.Repos) error {
		if err := uniqueCredentials(ctx, repos, u); err != nil {
			return err
		}
		ids, err := existingBranches(ctx, repos, in.BranchIDs)
		if err != nil {
			return err
		}
		u.SetBranches(ids)
		if err := repos.Users.Create(ctx, u); err != nil {
			return domain.Persistence("users.Create", err)
		}
		return adminAudit(ctx, repos, uc.clock, p, "user created: "+u.DisplayName())
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(u), nil
}

// Update changes the fields present in in. An empty PIN removes it.
func (uc *UserUseCase) Update(ctx context.Context, p entity.Principal, id uint, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(uc.log, p, "update user"); err != nil {
		return nil, err
	}
	var updated *entity.User
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		u, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return domain.Persistence("users.Update", err)
		}
		if u == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			if u.Name, err = validName(*in.Name); err != nil {
				return err
			}
		}
		if in.Username != nil {
			if u.Username, err = domain.RequiredText("username", *in.Username, UsernameMax); err != nil {
				return err
			}
		}
		if in.PIN != nil {
			if u.PIN, err = validPIN(*in.PIN, false); err != nil {
				return err
			}
		}
		if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
			if u.PasswordHash, err = hashPassword(strings.TrimSpace(*in.Password)); err != nil {
				return err
			}
		}
		if in.Role != nil {
			if u.Role, err = validRole(*in.Role); err != nil {
				return err
			}
		}
		if in.BranchIDs != nil {
			ids, err := existingBranches(ctx, repos, *in.BranchIDs)
			if err != nil {
				return err
			}
			u.SetBranches(ids)
		}
		if err := uniqueCredentials(ctx, repos, u); err != nil {
			return err
		}
		if err := repos.Users.Update(ctx, u); err != nil {
			return domain.Persistence("users.Update", err)
		}
		updated = u
		return adminAudit(ctx, repos, uc.clock, p, "user updated: "+u.DisplayName())
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(updated), nil
}

// Delete removes an account. Admins cannot delete themselves.
func (uc *UserUseCase) Delete(ctx context.Context, p entity.Principal, id uint) error {
	if err := requireAdmin(uc.log, p, "delete user"); err != nil {
		return err
	}
	if id == p.UserID {
		return domain.Invalid("id", "you cannot delete your own account")
	}
	return uc.tx.Run(ctx, func(repos repository.Repos) error {
		u, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return domain.Persistence("users.Delete", err)
		}
		if u == nil {
			return domain.ErrNotFound
		}
		if err := repos.Users.Delete(ctx, id); err != nil {
			return domain.Persistence("users.Delete", err)
		}
		return adminAudit(ctx, repos, uc.clock, p, "user deleted: "+u.DisplayName())
	})
}

func validName(raw string) (string, error) {
	name, err := domain.RequiredText("name", raw, UserNameMax)
	if err != nil {
		return "", err
	}
	if textnorm.Len(name) < UserNameMin {
		return "", domain.Invalid("name", fmt.Sprintf("must be at least %d characters", UserNameMin))
	}
	return name, nil
}

func validPIN(raw string, required bool) (string, error) {
	pin := strings.TrimSpace(raw)
	if pin == "" {
		if required {
			return "", domain.Invalid("pin", "is required")
		}
		return "", nil
	}
	if !pinPattern.MatchString(pin) {
		return "", domain.Invalid("pin", "must be 4 to 10 digits")
	}
	return pin, nil
}

func validRole(raw string) (string, error) {
	switch raw {
	case "":
		return entity.RoleUser, nil
	case entity.RoleAdmin, entity.RoleUser:
		return raw, nil
	}
	return "", domain.Invalid("role", "must be admin or user")
}

func hashPassword(password string) (string, error) {
	if textnorm.Len(password) < PasswordMinLength {
		return "", domain.Invalid("password", fmt.Sprintf("must be at least %d characters", PasswordMinLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func uniqueCredentials(ctx context.Context, repos repository.Repos, u *entity.User) error {
	if u.PIN != "" {
		other, err := repos.Users.GetByPIN(ctx, u.PIN)
		if err != nil {
			return domain.Persistence("users.unique", err)
		}
		if other != nil && other.ID != u.ID {
			return fmt.Errorf("PIN already used by another user: %w", domain.ErrConflict)
		}
	}
	other, err := repos.Users.GetByUsername(ctx, u.Username)
	if err != nil {
		return domain.Persistence("users.unique", err)
	}
	if other != nil && other.ID != u.ID {
		return fmt.Errorf("username %q already exists: %w", u.Username, domain.ErrConflict)
	}
	return nil
}

// existingBranches drops ids of branches that do not exist.
func existingBranches(ctx context.Context, repos repository.Repos, ids []uint) ([]uint, error) {
	out := make([]uint, 0, len(ids))
	for _, id := range entity.UniqueIDs(ids) {
		b, err := repos.Branches.GetByID(ctx, id)
		if err != nil {
			return nil, domain.Persistence("users.branches", err)
		}
		if b != nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		HasPIN:    u.PIN != "",
		BranchIDs: append([]uint{}, u.BranchIDs...),
		CreatedAt: u.CreatedAt,
	}
}
