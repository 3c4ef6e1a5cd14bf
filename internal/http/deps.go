// Package http expone la superficie REST del servicio: flujos de registro
// y login por código de verificación, rotación de refresh tokens y
// endpoints de lectura (me, interests).
package http

import (
	"context"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/token"
	"github.com/mattyapp/matty-api/internal/verification"
)

// Deps agrupa los servicios que consumen los handlers.
type Deps struct {
	Verification *verification.Service
	Tokens       *token.Service
	Users        repository.UserRepository
	Interests    repository.InterestRepository

	// AccessDecoder valida access tokens en el middleware Authenticate.
	AccessDecoder *token.Decoder

	// Ready chequea dependencias para /readyz (nil = siempre listo).
	Ready func(ctx context.Context) error
}

type userDTO struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Interests []string `json:"interests"`
}

func toUserDTO(u *repository.User) userDTO {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return userDTO{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Interests: interests,
	}
}

type authResponse struct {
	User   userDTO         `json:"user"`
	Tokens token.TokenPair `json:"tokens"`
}

type codeIssuedResponse struct {
	CodeID string `json:"code_id"`
}
