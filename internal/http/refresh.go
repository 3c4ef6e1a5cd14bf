package http

import (
	"errors"
	"net/http"

	"github.com/mattyapp/matty-api/internal/observability/logger"
	"github.com/mattyapp/matty-api/internal/token"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /v1/auth/refresh
//
// Rota el refresh token por un par nuevo. Cualquier causa de rechazo
// (firma inválida, token desconocido o ya consumido, usuario borrado)
// responde el mismo 401 para no regalar información.
func (d *Deps) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidBody, "refresh_token es requerido")
		return
	}

	ctx := r.Context()
	pair, err := d.Tokens.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrInvalidRefreshToken):
			RecordTokenRefresh("invalid")
		case errors.Is(err, token.ErrUnknownRefreshToken):
			RecordTokenRefresh("unknown")
		case errors.Is(err, token.ErrUserNotFound):
			RecordTokenRefresh("user_gone")
		default:
			RecordTokenRefresh("error")
			logger.From(ctx).Error("refresh rotation failed", logger.Err(err))
			WriteError(w, http.StatusInternalServerError, CodeInternal, "")
			return
		}
		WriteError(w, http.StatusUnauthorized, CodeInvalidRefreshToken, "refresh token inválido")
		return
	}

	RecordTokenRefresh("ok")
	WriteJSON(w, http.StatusOK, pair)
}
