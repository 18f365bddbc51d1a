package catalog

import "time"

// Entry es una entrada del catálogo compartido de medicamentos: nombre y
// opciones de dosis. El core solo lo lee (y lo siembra en dev).
type Entry struct {
	ID        string
	Name      string
	Doses     []string
	CreatedAt time.Time
}
