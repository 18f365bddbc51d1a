package history

import "time"

// Status del evento de adherencia.
type Status string

const (
	StatusTaken     Status = "Tomado"
	StatusCancelled Status = "Cancelado"
)

// Entry es un registro inmutable de adherencia. Lo crea únicamente el
// recorder; nunca se muta ni se borra desde el core.
type Entry struct {
	ID             string
	MedicineID     string // back-reference, sin ownership
	Name           string
	Dose           string
	ScheduledTimes []time.Time
	SelectedDates  []string
	Status         Status
	At             time.Time
}
