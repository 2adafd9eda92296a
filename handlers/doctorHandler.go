package handlers

import (
	"net/http"
	"strconv"

	"medisafe/middlewares"
	"medisafe/services"

	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	service services.DoctorService
}

func NewDoctorHandler(service services.DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

func parseDoctorID(c *gin.Context) (int64, bool) {
	doctorID, err := strconv.ParseInt(c.Param("doctor_id"), 10, 64)
	if err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid doctor ID", err)
		return 0, false
	}
	return doctorID, true
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", doctors)
}

func (h *DoctorHandler) Detail(c *gin.Context) {
	doctorID, ok := parseDoctorID(c)
	if !ok {
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "", detail)
}

func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	doctorID, ok := parseDoctorID(c)
	if !ok {
		return
	}
	var input services.DoctorProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middlewares.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	doctor, err := h.service.UpdateProfile(c.Request.Context(), doctorID, &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, "Doctor profile updated", doctor)
}
