package http

import (
	"net/http"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/http/middlewares"
	"github.com/mattyapp/matty-api/internal/observability/logger"
)

// GET /v1/me (requiere usuario autenticado)
func (d *Deps) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middlewares.GetUserID(ctx)

	user, err := d.Users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			// Token válido pero la cuenta ya no existe.
			WriteError(w, http.StatusNotFound, CodeUserNotFound, "")
			return
		}
		logger.From(ctx).Error("me lookup failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}
	WriteJSON(w, http.StatusOK, toUserDTO(user))
}
