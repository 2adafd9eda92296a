package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"medisafe/models"
	"medisafe/repositories"
	"medisafe/utils"

	"github.com/gin-gonic/gin"
)

type stubUserRepo struct {
	repositories.UserRepository
	users map[int64]*models.User
}

func (r *stubUserRepo) GetUserByID(_ context.Context, userID int64) (*models.User, error) {
	return r.users[userID], nil
}

func setupAuthRouter(t *testing.T, users ...*models.User) *gin.Engine {
	t.Helper()
	t.Setenv("SYMMETRIC_KEY", "0123456789abcdef0123456789abcdef")
	gin.SetMode(gin.TestMode)

	repo := &stubUserRepo{users: make(map[int64]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}

	router := gin.New()
	authed := router.Group("/").Use(AuthMiddleware(repo))
	{
		authed.GET("/whoami", func(c *gin.Context) {
			auth, _ := GetAuthContext(c.Request.Context())
			c.JSON(http.StatusOK, gin.H{"user_id": auth.UserID, "level": int(auth.Level)})
		})
		authed.GET("/admin-only", RequireAdmin(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		authed.GET("/super-only", RequireSuperAdmin(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}
	return router
}

func request(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID, role)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}
	return token
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	router := setupAuthRouter(t)
	if rec := request(router, "/whoami", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	router := setupAuthRouter(t)
	if rec := request(router, "/whoami", "v2.local.garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareRejectsDeactivatedAccount(t *testing.T) {
	user := &models.User{ID: 5, Username: "bob", Role: models.RolePatient, IsActive: false}
	router := setupAuthRouter(t, user)

	rec := request(router, "/whoami", tokenFor(t, "5", user.Role))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareRejectsDeletedAccount(t *testing.T) {
	user := &models.User{ID: 5, Username: "deleted_20250101_000000_bob", Role: models.RolePatient, IsActive: true}
	router := setupAuthRouter(t, user)

	rec := request(router, "/whoami", tokenFor(t, "5", user.Role))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthLevels(t *testing.T) {
	patient := &models.User{ID: 1, Username: "bob", Role: models.RolePatient, IsActive: true}
	admin := &models.User{ID: 2, Username: "ada", Role: models.RoleAdmin, IsActive: true}
	super := &models.User{ID: 3, Username: "root", Role: models.RoleAdmin, IsActive: true, IsSuperuser: true}
	router := setupAuthRouter(t, patient, admin, super)

	cases := []struct {
		name       string
		user       *models.User
		path       string
		wantStatus int
	}{
		{"patient reaches authed route", patient, "/whoami", http.StatusOK},
		{"patient blocked from admin route", patient, "/admin-only", http.StatusForbidden},
		{"admin reaches admin route", admin, "/admin-only", http.StatusOK},
		{"admin blocked from super route", admin, "/super-only", http.StatusForbidden},
		{"super admin reaches super route", super, "/super-only", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := tokenFor(t, strconv.FormatInt(tc.user.ID, 10), tc.user.Role)
			if rec := request(router, tc.path, token); rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
