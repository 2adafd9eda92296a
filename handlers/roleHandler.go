package handlers

import (
	"fmt"
	"net/http"

	"medisafe/middlewares"
	"medisafe/services"
	"medisafe/utils"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	service services.RoleService
}

func NewRoleHandler(service services.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

type convertRoleRequest struct {
	Role string `json:"role"`
}

// ConvertToTeamMember promotes an account to admin, nurse or lab tech.
func (h *RoleHandler) ConvertToTeamMember(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req convertRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := utils.ValidateConversionRole(req.Role); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.service.PromoteToTeamMember(c.Request.Context(), userID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := fmt.Sprintf("%s is now a %s", result.Username, result.NewRole)
	middlewares.RespondSuccess(c, http.StatusOK, message, result)
}

// ConvertToDoctor promotes an account to doctor with an optional clinical
// profile in the body.
func (h *RoleHandler) ConvertToDoctor(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var profile services.DoctorProfileInput
	if err := c.ShouldBindJSON(&profile); err != nil && err.Error() != "EOF" {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.PromoteToDoctor(c.Request.Context(), userID, &profile)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := fmt.Sprintf("%s is now a doctor", result.Username)
	middlewares.RespondSuccess(c, http.StatusOK, message, result)
}

// ConvertToPatient demotes a team member or doctor back to patient, keeping
// the doctor's clinical profile for a later re-promotion.
func (h *RoleHandler) ConvertToPatient(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	result, err := h.service.DemoteToPatient(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := fmt.Sprintf("%s is now a patient", result.Username)
	middlewares.RespondSuccess(c, http.StatusOK, message, result)
}

// DelistDoctor demotes a doctor to patient and removes the clinical profile.
func (h *RoleHandler) DelistDoctor(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	result, err := h.service.DelistDoctor(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := fmt.Sprintf("%s was delisted and is now a patient", result.Username)
	middlewares.RespondSuccess(c, http.StatusOK, message, result)
}
