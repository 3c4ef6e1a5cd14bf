package repository

import "context"

// Interest es una entrada del catálogo de intereses.
type Interest struct {
	ID   string
	Name string
}

// InterestRepository define el catálogo de intereses (solo lectura para el
// API; el seed ocurre en bootstrap).
type InterestRepository interface {
	// List retorna el catálogo completo.
	List(ctx context.Context) ([]Interest, error)

	// Count retorna la cantidad de intereses en el catálogo.
	Count(ctx context.Context) (int, error)

	// InsertAll agrega intereses al catálogo (usado por el seed inicial).
	InsertAll(ctx context.Context, interests []Interest) error
}
