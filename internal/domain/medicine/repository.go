package medicine

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indica ausencia normal de un registro; no es un fallo.
	ErrNotFound = errors.New("medicine not found")
	// ErrStorage envuelve fallos de la capa de persistencia local.
	ErrStorage = errors.New("storage failure")
)

// Repository persiste Items particionados por Owner.
type Repository interface {
	// List devuelve todos los items de la partición.
	List(ctx context.Context, owner Owner) ([]Item, error)
	// FindByID busca en todas las particiones (el id es globalmente único).
	FindByID(ctx context.Context, id string) (Item, error)
	// Save hace upsert por id dentro de la partición del item.
	Save(ctx context.Context, item Item) error
	// RemoveOccurrence quita un instante de Times. Si era el último, el item
	// queda con Times vacío (se conserva; los callers deben tolerarlo).
	// Devuelve si algo se removió.
	RemoveOccurrence(ctx context.Context, owner Owner, id string, instant time.Time) (bool, error)
	// Delete elimina el item completo de la partición.
	Delete(ctx context.Context, owner Owner, id string) error
}
