package routes

import (
	"courtside-server/utils"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildTestApp wires the admin party with the real RBAC middleware and a
// stub handler so the checks run without a database.
func buildTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	ok := func(ctx iris.Context) {
		ctx.JSON(iris.Map{"ok": true})
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/ping", ok)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, ok)
	}
	staff := app.Party("/api/staff", accessTokenVerifierMiddleware, utils.StaffOnlyMiddleware)
	{
		staff.Get("/ping", ok)
	}
	app.Get("/api/whoami", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, func(ctx iris.Context) {
		ctx.JSON(iris.Map{"userID": ctx.Values().Get("userID").(uint)})
	})
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

// signTestToken returns a signed JWT with the given role
func signTestToken(role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: 1, Role: role})
	return string(token)
}

func do(app *iris.Application, method, path, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+signTestToken(role))
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestAdminRBAC(t *testing.T) {
	app := buildTestApp()

	if resp := do(app, http.MethodGet, "/api/admin/ping", ""); resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}
	if resp := do(app, http.MethodGet, "/api/admin/ping", "user"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", resp.Code)
	}
	if resp := do(app, http.MethodGet, "/api/admin/ping", "staff"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff role, got %d", resp.Code)
	}
	if resp := do(app, http.MethodGet, "/api/admin/ping", "admin"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", resp.Code)
	}
	if resp := do(app, http.MethodGet, "/api/admin/ping", "super_admin"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for super_admin role, got %d", resp.Code)
	}
}

func TestSuperAdminOnlyRoute(t *testing.T) {
	app := buildTestApp()

	if resp := do(app, http.MethodPatch, "/api/admin/users/1/role", "admin"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on role change, got %d", resp.Code)
	}
	if resp := do(app, http.MethodPatch, "/api/admin/users/1/role", "super_admin"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for super_admin on role change, got %d", resp.Code)
	}
}

func TestStaffRBAC(t *testing.T) {
	app := buildTestApp()

	if resp := do(app, http.MethodGet, "/api/staff/ping", "user"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", resp.Code)
	}
	for _, role := range []string{"staff", "admin", "super_admin"} {
		if resp := do(app, http.MethodGet, "/api/staff/ping", role); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s role, got %d", role, resp.Code)
		}
	}
}

func TestUserIDFromToken(t *testing.T) {
	app := buildTestApp()

	resp := do(app, http.MethodGet, "/api/whoami", "user")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", resp.Code)
	}
	if body := resp.Body.String(); !strings.Contains(body, `"userID":1`) {
		t.Fatalf("token ID should flow into the request context, got %s", body)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{"user", "staff", "admin", "super_admin"} {
		if !validRole(role) {
			t.Errorf("%s should be a valid role", role)
		}
	}
	if validRole("root") || validRole("") {
		t.Error("unknown roles should be rejected")
	}
}
