package usecase

import (
	"context"
	"errors"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// DefaultBranches are created when a fresh installation gets no branch list.
var DefaultBranches = []dto.BranchRequest{
	{Name: "Teplice"},
	{Name: "Děčín"},
}

// SeedInput what Bootstrap should ensure exists.
type SeedInput struct {
	AdminUsername string
	AdminPIN      string
	AdminPassword string
	Branches      []dto.BranchRequest
}

// SeedResult what Bootstrap did.
type SeedResult struct {
	AdminCreated    bool
	BranchesCreated int
	BranchesSkipped int
}

// SeedUseCase prepares an empty installation. It is idempotent: the admin is
// only created when no user exists and branches already present are skipped.
type SeedUseCase struct {
	users    repository.UserRepository
	userUC   *UserUseCase
	branchUC *BranchUseCase
	log      *logger.Logger
}

// NewSeedUseCase builds the use case on top of the admin use cases.
func NewSeedUseCase(users repository.UserRepository, userUC *UserUseCase, branchUC *BranchUseCase, log *logger.Logger) *SeedUseCase {
	return &SeedUseCase{users: users, userUC: userUC, branchUC: branchUC, log: log.Component("seed")}
}

// Bootstrap runs as the system actor, so its audit entries read "system".
func (uc *SeedUseCase) Bootstrap(ctx context.Context, in SeedInput) (*SeedResult, error) {
	system := entity.Principal{Username: entity.SystemActor, Role: entity.RoleAdmin, Authenticated: true}
	res := &SeedResult{}

	n, err := uc.users.Count(ctx)
	if err != nil {
		return nil, domain.Persistence("seed.Bootstrap", err)
	}
	if n == 0 {
		admin, err := uc.userUC.Create(ctx, system, dto.CreateUserRequest{
			Username: in.AdminUsername,
			Password: in.AdminPassword,
			PIN:      in.AdminPIN,
			Name:     "Administrator",
			Role:     entity.RoleAdmin,
		})
		if err != nil {
			return nil, err
		}
		res.AdminCreated = true
		uc.log.Info().Str("username", admin.Username).Msg("administrator created")
	}

	branches := in.Branches
	if len(branches) == 0 {
		branches = DefaultBranches
	}
	for _, b := range branches {
		_, err := uc.branchUC.Create(ctx, system, b)
		switch {
		case err == nil:
			res.BranchesCreated++
		case errors.Is(err, domain.ErrConflict):
			res.BranchesSkipped++
		default:
			return nil, err
		}
	}
	uc.log.Info().Int("created", res.BranchesCreated).Int("skipped", res.BranchesSkipped).Msg("branches seeded")
	return res, nil
}
