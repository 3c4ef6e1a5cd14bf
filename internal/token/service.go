package token

import (
	"context"
	"fmt"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
)

// Claims de display que viajan en el access token.
const (
	emailClaim    = "email"
	fullNameClaim = "fullName"
)

// TokenPair es el par emitido para una sesión autenticada: access token
// stateless de vida corta y refresh token stateful de vida larga.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Deps contiene las dependencias del Service.
type Deps struct {
	AccessTokens   *Generator
	RefreshTokens  *Generator
	RefreshDecoder *Decoder
	Store          repository.RefreshTokenRepository
	Users          repository.UserRepository
}

// Service emite pares de tokens y realiza la rotación de refresh tokens.
type Service struct {
	deps Deps
}

// NewService crea un token service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// EmitTokens firma un par nuevo para el usuario y persiste el refresh token.
// Precondición: user.ID no vacío; violarla es un bug del caller
// (ErrInvalidState), no un error de negocio.
func (s *Service) EmitTokens(ctx context.Context, user *repository.User) (TokenPair, error) {
	if user == nil || user.ID == "" {
		return TokenPair{}, fmt.Errorf("%w: user has no id", ErrInvalidState)
	}

	access, err := s.deps.AccessTokens.Generate(user.ID, map[string]string{
		emailClaim:    user.Email,
		fullNameClaim: user.FullName,
	})
	if err != nil {
		return TokenPair{}, err
	}

	// El refresh token no lleva claims de display: solo subject.
	refresh, err := s.deps.RefreshTokens.Generate(user.ID, nil)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.deps.Store.Insert(ctx, refresh, user.ID); err != nil {
		return TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	logger.From(ctx).Debug("token pair emitted",
		logger.Layer("service"),
		logger.Component("token"),
		logger.UserID(user.ID),
	)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshTokens rota un refresh token por un par nuevo.
//
// El orden importa: el token se consume del store ANTES de re-validar al
// usuario. Así un segundo request concurrente con el mismo token observa
// ausencia y falla con ErrUnknownRefreshToken, aun si este request falla
// después — el token jamás se usa dos veces.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("token"),
		logger.Op("RefreshTokens"),
	)

	data, err := s.deps.RefreshDecoder.Decode(refreshToken)
	if err != nil {
		log.Debug("refresh token failed verification", logger.Err(err))
		return TokenPair{}, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	ok, err := s.deps.Store.ExistsAndDelete(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("consume refresh token: %w", err)
	}
	if !ok {
		// Nunca emitido, revocado, o replay de un token ya consumido.
		log.Info("refresh token not in store", logger.UserID(data.Subject))
		return TokenPair{}, ErrUnknownRefreshToken
	}

	user, err := s.deps.Users.FindByID(ctx, data.Subject)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Info("refresh token owner no longer exists", logger.UserID(data.Subject))
			return TokenPair{}, ErrUserNotFound
		}
		return TokenPair{}, err
	}

	return s.EmitTokens(ctx, user)
}

// RevokeAll elimina todos los refresh tokens del usuario (logout global).
func (s *Service) RevokeAll(ctx context.Context, userID string) (int, error) {
	return s.deps.Store.DeleteAllForUser(ctx, userID)
}
