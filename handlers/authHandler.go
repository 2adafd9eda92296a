package handlers

import (
	"net/http"
	"strconv"

	"medisafe/middlewares"
	"medisafe/models"
	"medisafe/services"
	"medisafe/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service services.AuthService
}

func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RolePatient,
	}
	if err := h.service.Register(c.Request.Context(), &user); err != nil {
		if err == services.ErrIdentityTaken {
			middlewares.RespondError(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		middlewares.RespondError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, "Account created successfully", user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middlewares.RespondError(c, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(strconv.FormatInt(user.ID, 10), user.Role)
	if err != nil {
		middlewares.RespondError(c, http.StatusInternalServerError, "Failed to generate tokens", err)
		return
	}
	utils.SetAuthCookies(c, accessToken, refreshToken)

	middlewares.RespondSuccess(c, http.StatusOK, "Login successful", gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	utils.ClearAuthCookies(c)
	middlewares.RespondSuccess(c, http.StatusOK, "Logged out", nil)
}

// RefreshToken issues a fresh access token from a valid refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refreshToken")
	if err != nil || refreshToken == "" {
		refreshToken = c.DefaultQuery("refreshToken", "")
	}
	if refreshToken == "" {
		middlewares.RespondError(c, http.StatusUnauthorized, "Missing refresh token", nil)
		return
	}

	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		middlewares.RespondError(c, http.StatusUnauthorized, "Invalid refresh token", err)
		return
	}

	accessToken, err := utils.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		middlewares.RespondError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "Token refreshed", gin.H{"accessToken": accessToken})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	auth, ok := middlewares.GetAuthContext(c.Request.Context())
	if !ok {
		middlewares.RespondError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.service.UpdatePassword(c.Request.Context(), auth.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "Password updated", nil)
}

type resetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		middlewares.RespondError(c, http.StatusInternalServerError, "Failed to process reset request", err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "If the email is registered, a reset code has been sent", nil)
}

type resetConfirmRequest struct {
	Email       string `json:"email"`
	ResetCode   string `json:"reset_code"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.service.ConfirmPasswordReset(c.Request.Context(), req.Email, req.ResetCode, req.NewPassword); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "Password reset successfully", nil)
}
