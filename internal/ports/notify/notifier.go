package notify

import (
	"context"
	"time"
)

// Payload es la carga mínima que viaja con una notificación programada:
// suficiente para renderizar el prompt tomar/posponer/cancelar al disparar.
type Payload struct {
	MedicineID string
	Name       string
	Dose       string
	Instant    time.Time
}

// FiredPayload es lo que el dispositivo entrega cuando una alarma dispara.
type FiredPayload struct {
	AlarmID string
	Payload
}

// Notifier es el contrato con la primitiva de notificaciones del dispositivo.
// ScheduleAt registra una alarma y devuelve un id durable; Cancel la retira.
type Notifier interface {
	ScheduleAt(ctx context.Context, at time.Time, p Payload) (alarmID string, err error)
	Cancel(ctx context.Context, alarmID string) error
}
