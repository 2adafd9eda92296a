package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"medisafe/middlewares"
	"medisafe/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service  services.NotificationService
	accounts services.AccountService
}

func NewNotificationHandler(service services.NotificationService, accounts services.AccountService) *NotificationHandler {
	return &NotificationHandler{service: service, accounts: accounts}
}

func (h *NotificationHandler) List(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	notifications, err := h.service.ListForUser(c.Request.Context(), auth.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	unread, err := h.service.CountUnread(c.Request.Context(), auth.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	notificationID, err := strconv.ParseInt(c.Param("notification_id"), 10, 64)
	if err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid notification ID", err)
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), notificationID, auth.UserID, auth.IsAdmin()); err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "Notification marked as read", nil)
}

type adminMessageRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// MessageAdmins fans a message from the caller out to the admin accounts.
func (h *NotificationHandler) MessageAdmins(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())

	var req adminMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" || req.Message == "" {
		middlewares.RespondError(c, http.StatusBadRequest, "Title and message are required", nil)
		return
	}

	sender, err := h.accounts.GetAccount(c.Request.Context(), auth.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	count, err := h.service.SendMessageToAdmins(c.Request.Context(), sender, req.Title, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, fmt.Sprintf("Message delivered to %d recipient(s)", count), nil)
}

// ListResetRequests lists the pending password-reset notifications raised
// for a given account.
func (h *NotificationHandler) ListResetRequests(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	requests, err := h.service.ListPasswordResetRequests(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", requests)
}

// DownloadAttachment streams a notification's attached file back as binary.
func (h *NotificationHandler) DownloadAttachment(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	notificationID, err := strconv.ParseInt(c.Param("notification_id"), 10, 64)
	if err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid notification ID", err)
		return
	}

	filename, mimeType, data, err := h.service.AttachedFile(c.Request.Context(), notificationID, auth.UserID, auth.IsAdmin())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mimeType, data)
}
