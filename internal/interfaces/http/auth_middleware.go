package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// LocalPrincipal is the fiber Locals key of the authenticated principal.
const LocalPrincipal = "principal"

// PrincipalResolver turns a bearer token into the caller's principal.
// Implemented by *auth.AuthUseCase.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (entity.Principal, error)
}

// AuthMiddleware validates the Bearer token and stores the principal, reloaded
// from the database, in c.Locals.
func AuthMiddleware(resolver PrincipalResolver, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header required"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "format: Bearer <token>"})
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "empty token"})
		}
		p, err := resolver.ResolvePrincipal(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "invalid or expired token"})
			}
			return writeError(c, log, err)
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// RequireRole lets through only principals holding one of roles.
// Must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "token carries no role"})
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: CodeForbidden, Message: "role not allowed for this route"})
	}
}

// AdminOnly is RequireRole(entity.RoleAdmin).
func AdminOnly() fiber.Handler {
	return RequireRole(entity.RoleAdmin)
}

// GetPrincipal returns the principal stored by AuthMiddleware, or Anonymous.
func GetPrincipal(c *fiber.Ctx) entity.Principal {
	p, ok := c.Locals(LocalPrincipal).(entity.Principal)
	if !ok {
		return entity.Anonymous()
	}
	return p
}

// GetRole returns the caller's role, "" when unauthenticated.
func GetRole(c *fiber.Ctx) string {
	return GetPrincipal(c).Role
}

// GetUserID returns the caller's user id, 0 when unauthenticated.
func GetUserID(c *fiber.Ctx) uint {
	return GetPrincipal(c).UserID
}
