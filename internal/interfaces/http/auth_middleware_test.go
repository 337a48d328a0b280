package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	apphttp "github.com/branchdesk/branchdesk-api/internal/interfaces/http"
	pkgjwt "github.com/branchdesk/branchdesk-api/pkg/jwt"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Test helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "branchdesk-test"
	testExpMin    = 60
)

// tokenResolver maps raw tokens to principals; anything else is unauthorized.
type tokenResolver map[string]entity.Principal

func (r tokenResolver) ResolvePrincipal(_ context.Context, token string) (entity.Principal, error) {
	if token == "broken-db" {
		return entity.Anonymous(), errors.New("connection refused")
	}
	p, ok := r[token]
	if !ok {
		return entity.Anonymous(), domain.ErrUnauthorized
	}
	return p, nil
}

var resolver = tokenResolver{
	"admin-token": {UserID: 1, Username: "admin", Role: entity.RoleAdmin, Authenticated: true},
	"staff-token": {UserID: 2, Username: "jana", Role: entity.RoleUser, BranchIDs: []uint{3}, Authenticated: true},
	"norole":      {UserID: 3, Username: "legacy", Authenticated: true},
}

// buildTestApp: AuthMiddleware, then RequireRole, then a handler echoing the principal.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/protected",
		apphttp.AuthMiddleware(resolver, logger.Nop()),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c), "user_id": apphttp.GetUserID(c)})
		},
	)
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminPasses(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin), "Bearer admin-token")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
	assert.Equal(t, float64(1), body["user_id"])
}

func TestRequireRole_AnyOfSeveralRoles(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin, entity.RoleUser), "Bearer staff-token")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_StaffBlockedOnAdminRoute(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin), "Bearer staff-token")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "FORBIDDEN")
}

func TestRequireRole_PrincipalWithoutRole_Returns401(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin), "Bearer norole")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "MISSING_ROLE")
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_MissingHeader_Returns401(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "MISSING_TOKEN")
}

func TestAuthMiddleware_WrongScheme_Returns401(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin), "Basic YWRtaW46YWRtaW4=")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "INVALID_TOKEN")
}

func TestAuthMiddleware_UnknownToken_Returns401(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin), "Bearer token.invalid.here")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "INVALID_TOKEN")
}

func TestAuthMiddleware_StorageFailure_Returns500WithoutDetail(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin), "Bearer broken-db")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := bodyString(t, resp)
	assert.Contains(t, body, "INTERNAL")
	assert.NotContains(t, body, "connection refused")
}

// ──────────────────────────────────────────────────────────────────────────────
// pkg/jwt round trip
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "42", entity.RoleUser, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
	assert.Equal(t, entity.RoleUser, role)
}

func TestJWT_Expired_ReturnsError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "42", entity.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err)
}

func TestJWT_WrongSecret_ReturnsError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "42", entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("a-completely-different-secret", tok)
	assert.Error(t, err)
}
