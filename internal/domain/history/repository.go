package history

import (
	"context"

	"medication-reminder/internal/ports/auth"
)

// Repository es el log local de adherencia, particionado por sesión.
type Repository interface {
	Append(ctx context.Context, sess auth.Session, e Entry) error
	// List devuelve las entradas más recientes primero.
	List(ctx context.Context, sess auth.Session) ([]Entry, error)
}

// Mirror replica entradas a un almacén remoto, best-effort.
type Mirror interface {
	Push(ctx context.Context, userID string, e Entry) error
}
