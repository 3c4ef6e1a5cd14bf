package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Códigos de error de negocio que viajan en el campo "error".
const (
	CodeInvalidBody             = "INVALID_BODY"
	CodeEmailInvalid            = "EMAIL_INVALID"
	CodePhoneInvalid            = "PHONE_INVALID"
	CodeUserExists              = "USER_EXISTS"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeVerificationCodeExists  = "VERIFICATION_CODE_EXISTS"
	CodeVerificationCodeInvalid = "VERIFICATION_CODE_INVALID"
	CodeInvalidRefreshToken     = "INVALID_REFRESH_TOKEN"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInternal                = "INTERNAL"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		RequestID:        rid,
	})
}

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON: decodifica JSON de forma tolerante (NO falla por campos
// desconocidos). Valida Content-Type y limita el tamaño del body a 1MB.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, CodeInvalidBody, "Content-Type debe ser application/json")
		return false
	}
	// máx 1MB
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, CodeInvalidBody, "json inválido")
		return false
	}
	return true
}
