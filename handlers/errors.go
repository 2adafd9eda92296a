package handlers

import (
	"errors"
	"net/http"

	"medisafe/middlewares"
	"medisafe/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto the HTTP contract.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrDoctorNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		middlewares.RespondError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrNotificationAccess):
		middlewares.RespondError(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, services.ErrSelfDelete),
		errors.Is(err, services.ErrNotSoftDeleted),
		errors.Is(err, services.ErrAlreadyDeleted),
		errors.Is(err, services.ErrAlreadyDoctor),
		errors.Is(err, services.ErrSameRole),
		errors.Is(err, services.ErrNotTeamMember),
		errors.Is(err, services.ErrIdentityTaken),
		errors.Is(err, services.ErrNoFileAttached),
		errors.Is(err, services.ErrInvalidFileType):
		middlewares.RespondError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		middlewares.RespondError(c, http.StatusInternalServerError, "An unexpected error occurred", err)
	}
}
