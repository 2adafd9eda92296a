package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"medisafe/middlewares"
	"medisafe/services"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service services.AccountService
}

func NewAccountHandler(service services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

func parseUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid user ID", err)
		return 0, false
	}
	return userID, true
}

// SoftDelete deactivates an account and frees its username and email.
func (h *AccountHandler) SoftDelete(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	result, err := h.service.SoftDelete(c.Request.Context(), auth.UserID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := fmt.Sprintf("Account %s was deactivated and can be restored", result.OriginalUsername)
	middlewares.RespondSuccess(c, http.StatusOK, message, result)
}

// Restore reactivates a soft-deleted account under its recovered identity.
func (h *AccountHandler) Restore(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	result, err := h.service.Restore(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := fmt.Sprintf("Account restored as %s", result.Username)
	middlewares.RespondSuccess(c, http.StatusOK, message, result)
}

// PermanentDelete removes a soft-deleted account and every dependent row.
func (h *AccountHandler) PermanentDelete(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	result, err := h.service.PermanentDelete(c.Request.Context(), auth.UserID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := fmt.Sprintf("Account %s permanently deleted", result.Username)
	middlewares.RespondSuccess(c, http.StatusOK, message, result)
}

func (h *AccountHandler) Activate(c *gin.Context) {
	h.setActive(c, true, "Account activated")
}

func (h *AccountHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false, "Account deactivated")
}

func (h *AccountHandler) setActive(c *gin.Context, active bool, message string) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	user, err := h.service.SetActive(c.Request.Context(), userID, active)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, message, user)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	user, err := h.service.GetAccount(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", user)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	includeDeleted := auth.IsSuperAdmin() && c.Query("include_deleted") == "true"

	accounts, err := h.service.ListAccounts(c.Request.Context(), includeDeleted)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", accounts)
}

// ListDeletedAccounts lists restorable accounts, super admin only.
func (h *AccountHandler) ListDeletedAccounts(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	accounts, err := h.service.ListDeletedAccounts(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", accounts)
}

// Overview serves the admin account dashboard.
func (h *AccountHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", overview)
}
