package kv

import "context"

// Store es la persistencia local clave-valor. Los repos locales serializan
// colecciones completas como JSON bajo una clave por partición.
type Store interface {
	// Get devuelve el valor y si existe. Ausencia no es error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
