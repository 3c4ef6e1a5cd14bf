package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
	"github.com/mattyapp/matty-api/internal/verification"
)

// GET /v1/registration/email/code?address=...
func (d *Deps) RegistrationEmailCode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if !ValidEmail(address) {
		WriteError(w, http.StatusBadRequest, CodeEmailInvalid, "email inválido")
		return
	}
	d.registrationCode(w, r, address, repository.ChannelEmail)
}

// GET /v1/registration/phone/code?number=...
func (d *Deps) RegistrationPhoneCode(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	if !ValidPhone(number) {
		WriteError(w, http.StatusBadRequest, CodePhoneInvalid, "teléfono inválido")
		return
	}
	d.registrationCode(w, r, number, repository.ChannelSMS)
}

func (d *Deps) registrationCode(w http.ResponseWriter, r *http.Request, destination string, channel repository.Channel) {
	ctx := r.Context()

	var exists bool
	var err error
	if channel == repository.ChannelEmail {
		exists, err = d.Users.ExistsByEmail(ctx, destination)
	} else {
		exists, err = d.Users.ExistsByPhone(ctx, destination)
	}
	if err != nil {
		logger.From(ctx).Error("user existence check failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}
	if exists {
		WriteError(w, http.StatusConflict, CodeUserExists, "ya hay una cuenta para ese destino")
		return
	}

	code, err := d.Verification.SendCode(ctx, destination, repository.PurposeRegistration, channel)
	if err != nil {
		if errors.Is(err, verification.ErrActiveCodeExists) {
			WriteError(w, http.StatusConflict, CodeVerificationCodeExists, "ya hay un código vigente")
			return
		}
		logger.From(ctx).Error("send registration code failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	RecordCodeIssued(string(channel), string(repository.PurposeRegistration))
	WriteJSON(w, http.StatusOK, codeIssuedResponse{CodeID: code.ID})
}

type registerRequest struct {
	Code      string   `json:"code"`
	CodeID    string   `json:"code_id"`
	FullName  string   `json:"full_name"`
	Interests []string `json:"interests"`
}

// POST /v1/registration/email
func (d *Deps) RegisterEmail(w http.ResponseWriter, r *http.Request) {
	d.register(w, r, repository.ChannelEmail)
}

// POST /v1/registration/phone
func (d *Deps) RegisterPhone(w http.ResponseWriter, r *http.Request) {
	d.register(w, r, repository.ChannelSMS)
}

// register consume el código y crea la cuenta con el destino verificado.
// El destino sale de la Acceptance, no del body: el cliente no puede
// registrar un email/teléfono distinto del que recibió el código.
func (d *Deps) register(w http.ResponseWriter, r *http.Request, channel repository.Channel) {
	var req registerRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if req.Code == "" || req.CodeID == "" || strings.TrimSpace(req.FullName) == "" {
		WriteError(w, http.StatusBadRequest, CodeInvalidBody, "code, code_id y full_name son requeridos")
		return
	}

	ctx := r.Context()
	acc, err := d.Verification.AcceptCode(ctx, req.Code, req.CodeID, repository.PurposeRegistration, channel)
	if err != nil {
		logger.From(ctx).Error("accept registration code failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}
	RecordCodeAccept(acc.Accepted)
	if !acc.Accepted {
		WriteError(w, http.StatusBadRequest, CodeVerificationCodeInvalid, "código inválido o expirado")
		return
	}

	user := &repository.User{
		FullName:  strings.TrimSpace(req.FullName),
		Interests: req.Interests,
	}
	if channel == repository.ChannelEmail {
		user.Email = acc.Destination
	} else {
		user.Phone = acc.Destination
	}

	created, err := d.Users.Insert(ctx, user)
	if err != nil {
		if repository.IsConflict(err) {
			// El destino se registró entre la emisión y la aceptación.
			WriteError(w, http.StatusConflict, CodeUserExists, "ya hay una cuenta para ese destino")
			return
		}
		logger.From(ctx).Error("insert user failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	pair, err := d.Tokens.EmitTokens(ctx, created)
	if err != nil {
		logger.From(ctx).Error("emit tokens after registration failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}

	logger.From(ctx).Info("user registered", logger.UserID(created.ID))
	WriteJSON(w, http.StatusCreated, authResponse{User: toUserDTO(created), Tokens: pair})
}
