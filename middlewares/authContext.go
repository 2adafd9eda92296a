package middlewares

import (
	"context"
	"net/http"
	"strconv"

	"medisafe/models"
	"medisafe/repositories"
	"medisafe/utils"

	"github.com/gin-gonic/gin"
)

// AuthLevel is the access tier resolved for a request.
type AuthLevel int

const (
	LevelDenied AuthLevel = iota
	LevelAuthenticated
	LevelAdmin
	LevelSuperAdmin
)

// AuthContext carries the caller's identity for the rest of the request.
// It is resolved exactly once, by AuthMiddleware, so handlers never re-parse
// the token or re-query the account.
type AuthContext struct {
	UserID int64
	Role   string
	Level  AuthLevel
}

func (a *AuthContext) IsAdmin() bool {
	return a.Level >= LevelAdmin
}

func (a *AuthContext) IsSuperAdmin() bool {
	return a.Level == LevelSuperAdmin
}

type contextKey string

const authContextKey contextKey = "authContext"

// AuthMiddleware validates the access token (cookie first, then the
// Authorization query parameter the mobile clients use), loads the account
// and stores an AuthContext on the request. Requests without a valid token
// or with a deactivated account are rejected here.
func AuthMiddleware(userRepo repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("accessToken")
		if err != nil || token == "" {
			token = c.DefaultQuery("accessToken", "")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Missing access token"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			c.Abort()
			return
		}

		userID, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			c.Abort()
			return
		}

		user, err := userRepo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to resolve account"})
			c.Abort()
			return
		}
		if user == nil || !user.IsActive || user.IsDeleted() {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Account is not active"})
			c.Abort()
			return
		}

		auth := &AuthContext{UserID: user.ID, Role: user.Role, Level: LevelAuthenticated}
		switch {
		case user.IsSuperuser:
			auth.Level = LevelSuperAdmin
		case user.Role == models.RoleAdmin:
			auth.Level = LevelAdmin
		}

		ctx := context.WithValue(c.Request.Context(), authContextKey, auth)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin rejects requests below admin level.
func RequireAdmin() gin.HandlerFunc {
	return requireLevel(LevelAdmin)
}

// RequireSuperAdmin rejects requests below super-admin level. Permanent
// deletion and deleted-account listings sit behind this.
func RequireSuperAdmin() gin.HandlerFunc {
	return requireLevel(LevelSuperAdmin)
}

func requireLevel(level AuthLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := GetAuthContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			c.Abort()
			return
		}
		if auth.Level < level {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Insufficient privileges"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAuthContext retrieves the AuthContext stored by AuthMiddleware.
func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey).(*AuthContext)
	return auth, ok
}
