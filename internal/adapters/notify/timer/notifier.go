// Package timer implementa el puerto de notificaciones con timers en
// proceso: el sustituto del servicio de alarmas del dispositivo cuando el
// core corre como servicio.
package timer

import (
	"context"
	"sync"
	"time"

	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/notify"

	"github.com/google/uuid"
)

// Handler recibe el payload cuando una alarma dispara.
type Handler func(notify.FiredPayload)

type Notifier struct {
	mu      sync.Mutex
	handler Handler
	log     logger.Logger
	timers  map[string]*time.Timer
}

func New(handler Handler, log logger.Logger) *Notifier {
	return &Notifier{
		handler: handler,
		log:     log,
		timers:  make(map[string]*time.Timer),
	}
}

func (n *Notifier) ScheduleAt(ctx context.Context, at time.Time, p notify.Payload) (string, error) {
	alarmID := uuid.NewString()

	d := time.Until(at)
	if d < 0 {
		d = 0
	}

	n.mu.Lock()
	n.timers[alarmID] = time.AfterFunc(d, func() {
		n.fire(alarmID, p)
	})
	n.mu.Unlock()

	n.log.Debug("alarm registered", map[string]any{
		"alarm_id":    alarmID,
		"medicine_id": p.MedicineID,
		"at":          at.Format(time.RFC3339),
	})
	return alarmID, nil
}

// Cancel es idempotente: cancelar un id desconocido o ya disparado no es
// error.
func (n *Notifier) Cancel(ctx context.Context, alarmID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	t, ok := n.timers[alarmID]
	if !ok {
		return nil
	}
	t.Stop()
	delete(n.timers, alarmID)
	return nil
}

func (n *Notifier) fire(alarmID string, p notify.Payload) {
	n.mu.Lock()
	delete(n.timers, alarmID)
	handler := n.handler
	n.mu.Unlock()

	if handler != nil {
		handler(notify.FiredPayload{AlarmID: alarmID, Payload: p})
	}
}
