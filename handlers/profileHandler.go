package handlers

import (
	"io"
	"net/http"

	"medisafe/middlewares"
	"medisafe/services"

	"github.com/gin-gonic/gin"
)

// Photo uploads are capped to keep the inline data-URL storage bounded.
const maxPhotoBytes = 5 << 20

type ProfileHandler struct {
	service services.ProfileService
}

func NewProfileHandler(service services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Overview(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	overview, err := h.service.Overview(c.Request.Context(), auth.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", overview)
}

// OverviewFor serves any account's profile, admin only.
func (h *ProfileHandler) OverviewFor(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", overview)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())

	var input services.ProfileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	profile, err := h.service.Update(c.Request.Context(), auth.UserID, &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "Profile updated", profile)
}

// UploadPhoto accepts a multipart image under "photo" (or the legacy
// "profile_photo" field) and stores it inline on the profile.
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		fileHeader, err = c.FormFile("profile_photo")
	}
	if err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "No photo uploaded", err)
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		middlewares.RespondError(c, http.StatusBadRequest, "Photo exceeds the 5MB limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middlewares.RespondError(c, http.StatusInternalServerError, "Failed to read uploaded photo", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		middlewares.RespondError(c, http.StatusInternalServerError, "Failed to read uploaded photo", err)
		return
	}

	photoURL, err := h.service.UploadPhoto(c.Request.Context(), auth.UserID, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "Profile photo updated", gin.H{"photo_url": photoURL})
}

// Dashboard serves the caller's clinical activity summary.
func (h *ProfileHandler) Dashboard(c *gin.Context) {
	auth, _ := middlewares.GetAuthContext(c.Request.Context())
	stats, err := h.service.Dashboard(c.Request.Context(), auth.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", stats)
}
