package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/dto"
	"github.com/SundayYogurt/directory_service/internal/helper"
	"github.com/SundayYogurt/directory_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "guard-test-secret"

// stubRBAC grants permissions per principal string, e.g. "user:42".
type stubRBAC struct {
	grants map[string][]string
}

func (s *stubRBAC) ResolveRoles(context.Context, domain.Principal) ([]uint, error) {
	return nil, nil
}

func (s *stubRBAC) ResolvePermissions(context.Context, []uint) ([]string, error) {
	return nil, nil
}

func (s *stubRBAC) HasAnyPermission(_ context.Context, principal domain.Principal, required []string) (bool, error) {
	return services.HasAny(s.grants[principal.String()], required), nil
}

func (s *stubRBAC) ListRoles(context.Context, int, int) ([]dto.RoleResponse, error) {
	return nil, nil
}

func (s *stubRBAC) ListPermissions(context.Context, int, int) ([]dto.PermissionResponse, error) {
	return nil, nil
}

func (s *stubRBAC) CreateRole(context.Context, dto.CreateRoleRequest) (*domain.Role, error) {
	return nil, nil
}

func (s *stubRBAC) GrantPermissions(context.Context, string, []string, uint) error {
	return nil
}

func (s *stubRBAC) RolesOf(context.Context, domain.Principal) ([]dto.RoleResponse, error) {
	return nil, nil
}

func testApp(rbac services.RBACService) (*fiber.App, helper.Auth) {
	auth := helper.SetupAuth(testSecret, time.Hour, time.Hour)
	registry := Registry{
		"op.me":     {Mode: AuthRequired},
		"op.list":   {Mode: AuthRequired, Permissions: []string{"USRLISALL"}},
		"op.burCre": {Mode: AuthRequired, Permissions: []string{"BURCREALL"}},
		"op.feed":   {Mode: AuthOptional},
		"op.soft":   {Mode: AuthSoft},
		"op.socket": {Mode: AuthRequired},
	}
	guard := NewGuard(auth, rbac, registry, zap.NewNop())

	echo := func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"principal": CurrentPrincipal(ctx).String()})
	}

	app := fiber.New()
	app.Get("/me", guard.Protect("op.me"), echo)
	app.Get("/list", guard.Protect("op.list"), echo)
	app.Get("/bur", guard.Protect("op.burCre"), echo)
	app.Get("/feed", guard.Protect("op.feed"), echo)
	app.Get("/soft", guard.Protect("op.soft"), echo)
	app.Get("/socket", guard.ProtectSocket("op.socket"), echo)
	return app, auth
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestRequiredAuthNoToken(t *testing.T) {
	app, _ := testApp(&stubRBAC{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(40101), body["code"])
	assert.Equal(t, false, body["status"])
}

func TestRequiredAuthExpiredToken(t *testing.T) {
	app, _ := testApp(&stubRBAC{})
	expired := helper.Auth{Secret: testSecret, AccessTTL: -time.Hour, RefreshTTL: time.Hour}
	tok, err := expired.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(40102), body["code"])
}

func TestRequiredAuthInvalidToken(t *testing.T) {
	app, _ := testApp(&stubRBAC{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(40103), body["code"])
}

func TestRequiredAuthValidToken(t *testing.T) {
	app, auth := testApp(&stubRBAC{})
	tok, err := auth.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user:42", body["principal"])
}

func TestCookiePreferenceSkipsRefresh(t *testing.T) {
	app, auth := testApp(&stubRBAC{})
	tok, err := auth.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "abc"})
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user:42", body["principal"])
}

func TestPermissionStageAllows(t *testing.T) {
	rbac := &stubRBAC{grants: map[string][]string{"user:42": {"USRCREALL", "USRLISALL"}}}
	app, auth := testApp(rbac)
	tok, err := auth.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, _ := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPermissionStageDenies(t *testing.T) {
	rbac := &stubRBAC{grants: map[string][]string{"user:42": {"USRLISOWN"}}}
	app, auth := testApp(rbac)
	tok, err := auth.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, float64(40301), body["code"])
	assert.Equal(t, "noPermission", body["message"])
}

func TestPermissionStageBusinessPath(t *testing.T) {
	rbac := &stubRBAC{grants: map[string][]string{"business:7": {"BURCREALL"}}}
	app, auth := testApp(rbac)
	tok, err := auth.GenerateToken(7, "acme@example.com", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/bur", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "business:7", body["principal"])
}

func TestOptionalAuthExpiredTokenProceedsAnonymous(t *testing.T) {
	app, _ := testApp(&stubRBAC{})
	expired := helper.Auth{Secret: testSecret, AccessTTL: -time.Hour, RefreshTTL: time.Hour}
	tok, err := expired.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "anonymous", body["principal"])
}

func TestOptionalAuthBusinessTokenStaysAnonymous(t *testing.T) {
	app, auth := testApp(&stubRBAC{})
	tok, err := auth.GenerateToken(7, "acme@example.com", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "anonymous", body["principal"])
}

func TestOptionalAuthBearerHeader(t *testing.T) {
	app, auth := testApp(&stubRBAC{})
	tok, err := auth.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user:42", body["principal"])
}

func TestSoftPresenceInvalidTokenProceedsAnonymous(t *testing.T) {
	app, _ := testApp(&stubRBAC{})

	req := httptest.NewRequest(http.MethodGet, "/soft", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "anonymous", body["principal"])
}

func TestSoftPresenceNoToken(t *testing.T) {
	app, _ := testApp(&stubRBAC{})

	req := httptest.NewRequest(http.MethodGet, "/soft", nil)
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "anonymous", body["principal"])
}

func TestSoftPresenceValidToken(t *testing.T) {
	app, auth := testApp(&stubRBAC{})
	tok, err := auth.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/soft", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user:42", body["principal"])
}

func TestSocketGuardQueryToken(t *testing.T) {
	app, auth := testApp(&stubRBAC{})
	tok, err := auth.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/socket?token="+tok, nil)
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "user:42", body["principal"])
}

func TestSocketGuardExpiredTokenCarriesExpiredAt(t *testing.T) {
	app, _ := testApp(&stubRBAC{})
	expired := helper.Auth{Secret: testSecret, AccessTTL: -time.Hour, RefreshTTL: time.Hour}
	tok, err := expired.GenerateToken(42, "jane@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/socket?token="+tok, nil)
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(40102), body["code"])
	assert.NotEmpty(t, body["expiredAt"])
}

func TestSocketGuardRequiresRequiredMode(t *testing.T) {
	auth := helper.SetupAuth(testSecret, time.Hour, time.Hour)
	guard := NewGuard(auth, &stubRBAC{}, Registry{
		"op.softSocket": {Mode: AuthSoft},
	}, zap.NewNop())

	require.Panics(t, func() { guard.ProtectSocket("op.softSocket") })
}

func TestSocketGuardMissingToken(t *testing.T) {
	app, _ := testApp(&stubRBAC{})

	req := httptest.NewRequest(http.MethodGet, "/socket", nil)
	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(40101), body["code"])
	assert.Nil(t, body["expiredAt"])
}
