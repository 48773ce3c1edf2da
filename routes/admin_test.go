package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildTestApp creates a minimal Iris app with the admin routes and JWT verifier
func buildTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(mockAccessToken) })

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, mockAdminOnlyMiddleware)
	{
		admin.Patch("/concerns/{id:uint}/status", AdminUpdateConcernStatus)
		admin.Delete("/concerns/{id:uint}", AdminDeleteConcern)
	}
	app.Build()
	return app
}

type mockAccessToken struct {
	ID   uint
	Role string
}

// mockAdminOnlyMiddleware uses mockAccessToken
func mockAdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*mockAccessToken)
	if claims.Role != "admin" && claims.Role != "super_admin" {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}
	ctx.Next()
}

// signTestToken returns a signed JWT with the given role
func signTestToken(role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(mockAccessToken{ID: 1, Role: role})
	return string(token)
}

func TestAdminConcernRoutesRBAC(t *testing.T) {
	app := buildTestApp()

	// No token -> rejected before the handler runs
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/concerns/1", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK || resp.Code == http.StatusNoContent {
		t.Fatalf("expected rejection without token, got %d", resp.Code)
	}

	// Student role -> 403
	req2 := httptest.NewRequest(http.MethodDelete, "/api/admin/concerns/1", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken("student"))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student role, got %d", resp2.Code)
	}
}

func TestAdminStatusUpdateRejectsMissingToken(t *testing.T) {
	app := buildTestApp()

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/concerns/1/status", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized && resp.Code != http.StatusForbidden {
		t.Fatalf("expected 401 or 403, got %d", resp.Code)
	}
}
