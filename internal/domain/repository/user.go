package repository

import (
	"context"
	"time"
)

// User es un registro del directorio de usuarios.
type User struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Interests []string
	CreatedAt time.Time
}

// UserRepository define el directorio de usuarios que consume el core.
type UserRepository interface {
	// FindByID busca un usuario por id. Retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail busca un usuario por email. Retorna ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByPhone busca un usuario por teléfono. Retorna ErrNotFound si no existe.
	FindByPhone(ctx context.Context, phone string) (*User, error)

	// ExistsByEmail indica si ya hay un usuario con ese email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByPhone indica si ya hay un usuario con ese teléfono.
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// Insert crea un usuario nuevo y retorna el registro con su ID asignado.
	// Retorna ErrConflict si el email/teléfono ya está tomado.
	Insert(ctx context.Context, user *User) (*User, error)
}
