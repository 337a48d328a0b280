package auth

import (
	"context"
	"crypto/subtle"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/jwt"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// JWTConfig token generation settings.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login and principal resolution.
type AuthUseCase struct {
	users    repository.UserRepository
	branches repository.BranchRepository
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase builds the auth use case.
func NewAuthUseCase(users repository.UserRepository, branches repository.BranchRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, branches: branches, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// Login accepts a PIN, or a username and password, and returns a signed JWT.
// Unknown users and wrong credentials both yield ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	var (
		user *entity.User
		err  error
	)
	switch {
	case strings.TrimSpace(in.PIN) != "":
		user, err = uc.users.GetByPIN(ctx, strings.TrimSpace(in.PIN))
		if err != nil {
			return nil, domain.Persistence("auth.Login", err)
		}
		if user == nil {
			return nil, domain.ErrUnauthorized
		}
	case strings.TrimSpace(in.Username) != "":
		user, err = uc.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
		if err != nil {
			return nil, domain.Persistence("auth.Login", err)
		}
		if user == nil {
			return nil, domain.ErrUnauthorized
		}
		if err := uc.checkPassword(ctx, user, in.Password); err != nil {
			return nil, err
		}
	default:
		return nil, domain.Invalid("pin", "enter a PIN or a username and password")
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, strconv.FormatUint(uint64(user.ID), 10), user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("login")
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// checkPassword verifies password against the stored bcrypt hash. Rows created
// before hashing was introduced hold the plaintext; a match there is accepted
// once and the password is re-hashed.
func (uc *AuthUseCase) checkPassword(ctx context.Context, user *entity.User, password string) error {
	if password == "" || user.PasswordHash == "" {
		return domain.ErrUnauthorized
	}
	if isBcrypt(user.PasswordHash) {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return domain.ErrUnauthorized
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(password)) != 1 {
		return domain.ErrUnauthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uc.users.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return domain.Persistence("auth.upgradePassword", err)
	}
	user.PasswordHash = string(hash)
	uc.log.Info().Uint("user_id", user.ID).Msg("legacy password re-hashed")
	return nil
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// ResolvePrincipal validates the token and reloads the user, so role and
// branch changes apply to tokens already issued.
func (uc *AuthUseCase) ResolvePrincipal(ctx context.Context, token string) (entity.Principal, error) {
	subject, _, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return entity.Anonymous(), domain.ErrUnauthorized
	}
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return entity.Anonymous(), domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, uint(id))
	if err != nil {
		return entity.Anonymous(), domain.Persistence("auth.ResolvePrincipal", err)
	}
	if user == nil {
		return entity.Anonymous(), domain.ErrUnauthorized
	}
	return entity.PrincipalFor(user), nil
}

// Me returns the caller and the branches they can open.
func (uc *AuthUseCase) Me(ctx context.Context, p entity.Principal) (*dto.MeResponse, error) {
	if !p.Authenticated {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, domain.Persistence("auth.Me", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	all, err := uc.branches.List(ctx)
	if err != nil {
		return nil, domain.Persistence("auth.Me", err)
	}
	visible := access.Visible(p).Filter(all)
	out := &dto.MeResponse{User: *toUserResponse(user), Branches: make([]dto.BranchResponse, 0, len(visible))}
	for _, b := range visible {
		out.Branches = append(out.Branches, dto.BranchResponse{
			ID: b.ID, Name: b.Name, Address: b.Address, Company: b.Company, CreatedAt: b.CreatedAt,
		})
	}
	return out, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
