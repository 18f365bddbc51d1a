package catalog

import "context"

type Repository interface {
	// List devuelve el catálogo completo ordenado por nombre.
	List(ctx context.Context) ([]Entry, error)
	// Upsert inserta o actualiza por nombre (solo para siembra).
	Upsert(ctx context.Context, e Entry) error
}
