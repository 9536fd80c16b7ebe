package handlers

import (
	"errors"
	"net/http"

	"cheflow-backend/internal/middleware"
	"cheflow-backend/internal/repositories"
	"cheflow-backend/internal/services"
	"cheflow-backend/pkg/utils"
)

// writeError maps service errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	switch {
	case services.IsValidation(err):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// currentUserID pulls the authenticated user out of the context as a
// nullable reference for audit fields.
func currentUserID(r *http.Request) *int {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
