package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
	"github.com/mattyapp/matty-api/internal/verification"
)

// GET /v1/login/email/code?address=...
func (d *Deps) LoginEmailCode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if !ValidEmail(address) {
		WriteError(w, http.StatusBadRequest, CodeEmailInvalid, "email inválido")
		return
	}
	d.loginCode(w, r, address, repository.ChannelEmail)
}

// GET /v1/login/phone/code?number=...
func (d *Deps) LoginPhoneCode(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	if !ValidPhone(number) {
		WriteError(w, http.StatusBadRequest, CodePhoneInvalid, "teléfono inválido")
		return
	}
	d.loginCode(w, r, number, repository.ChannelSMS)
}

func (d *Deps) loginCode(w http.ResponseWriter, r *http.Request, destination string, channel repository.Channel) {
	ctx := r.Context()

	_, err := d.findByDestination(ctx, destination, channel)
	if err != nil {
		if repository.IsNotFound(err) {
			WriteError(w, http.StatusNotFound, CodeUserNotFound, "no hay cuenta para ese destino")
			return
		}
		logger.From(ctx).Error("user lookup failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	code, err := d.Verification.SendCode(ctx, destination, repository.PurposeLogin, channel)
	if err != nil {
		if errors.Is(err, verification.ErrActiveCodeExists) {
			WriteError(w, http.StatusConflict, CodeVerificationCodeExists, "ya hay un código vigente")
			return
		}
		logger.From(ctx).Error("send login code failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	RecordCodeIssued(string(channel), string(repository.PurposeLogin))
	WriteJSON(w, http.StatusOK, codeIssuedResponse{CodeID: code.ID})
}

type loginRequest struct {
	Code   string `json:"code"`
	CodeID string `json:"code_id"`
}

// POST /v1/login/email
func (d *Deps) LoginEmail(w http.ResponseWriter, r *http.Request) {
	d.login(w, r, repository.ChannelEmail)
}

// POST /v1/login/phone
func (d *Deps) LoginPhone(w http.ResponseWriter, r *http.Request) {
	d.login(w, r, repository.ChannelSMS)
}

func (d *Deps) login(w http.ResponseWriter, r *http.Request, channel repository.Channel) {
	var req loginRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if req.Code == "" || req.CodeID == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidBody, "code y code_id son requeridos")
		return
	}

	ctx := r.Context()
	acc, err := d.Verification.AcceptCode(ctx, req.Code, req.CodeID, repository.PurposeLogin, channel)
	if err != nil {
		logger.From(ctx).Error("accept login code failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}
	RecordCodeAccept(acc.Accepted)
	if !acc.Accepted {
		WriteError(w, http.StatusBadRequest, CodeVerificationCodeInvalid, "código inválido o expirado")
		return
	}

	user, err := d.findByDestination(ctx, acc.Destination, channel)
	if err != nil {
		if repository.IsNotFound(err) {
			// La cuenta desapareció entre la emisión y la aceptación.
			WriteError(w, http.StatusNotFound, CodeUserNotFound, "no hay cuenta para ese destino")
			return
		}
		logger.From(ctx).Error("user lookup failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	pair, err := d.Tokens.EmitTokens(ctx, user)
	if err != nil {
		logger.From(ctx).Error("emit tokens after login failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	logger.From(ctx).Info("user logged in", logger.UserID(user.ID))
	WriteJSON(w, http.StatusOK, authResponse{User: toUserDTO(user), Tokens: pair})
}

func (d *Deps) findByDestination(ctx context.Context, destination string, channel repository.Channel) (*repository.User, error) {
	if channel == repository.ChannelEmail {
		return d.Users.FindByEmail(ctx, destination)
	}
	return d.Users.FindByPhone(ctx, destination)
}
