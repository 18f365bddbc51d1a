// Package alarms lleva la contabilidad de registros de alarma por
// medicamento sobre la primitiva de notificaciones del dispositivo.
//
// Ciclo de vida de un registro:
//
//	Scheduled -> Fired -> (Taken | Cancelled | Snoozed -> nuevo Scheduled)
//	Scheduled -> CancelledExternally
//
// Taken y Cancelled son terminales. El snooze re-entra como un registro
// nuevo con instante = original + 10 minutos; esa transición la conduce el
// orquestador, no este paquete.
package alarms

import (
	"context"
	"sync"
	"time"

	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/notify"
)

type registration struct {
	alarmID string
	instant time.Time
}

// Scheduler mantiene el índice medicineID -> registros vivos. La obligación
// es que ese conjunto coincida con las ocurrencias futuras del item: exactamente
// un registro por ocurrencia viva, cero al tomarse/cancelarse.
type Scheduler struct {
	mu       sync.Mutex
	notifier notify.Notifier
	log      logger.Logger
	regs     map[string][]registration
}

func NewScheduler(n notify.Notifier, log logger.Logger) *Scheduler {
	return &Scheduler{
		notifier: n,
		log:      log,
		regs:     make(map[string][]registration),
	}
}

// Schedule registra exactamente una alarma para (medicineID, instante). Si ya
// existe un registro vivo para ese par, primero se cancela el viejo: volver a
// programar el mismo par no duplica disparos.
func (s *Scheduler) Schedule(ctx context.Context, p notify.Payload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.regs[p.MedicineID]
	kept := live[:0]
	for _, r := range live {
		if r.instant.Equal(p.Instant) {
			if err := s.notifier.Cancel(ctx, r.alarmID); err != nil {
				s.log.Warn("cancel stale alarm failed", map[string]any{
					"medicine_id": p.MedicineID,
					"alarm_id":    r.alarmID,
					"error":       err.Error(),
				})
			}
			continue
		}
		kept = append(kept, r)
	}

	alarmID, err := s.notifier.ScheduleAt(ctx, p.Instant, p)
	if err != nil {
		s.regs[p.MedicineID] = kept
		return "", err
	}

	s.regs[p.MedicineID] = append(kept, registration{alarmID: alarmID, instant: p.Instant})
	return alarmID, nil
}

// CancelAll retira todos los registros vivos del medicamento, sin importar el
// instante. Best-effort: un fallo al cancelar se loguea y no corta (una
// alarma huérfana es recuperable; bloquear el guardado no). Devuelve cuántos
// se cancelaron efectivamente.
func (s *Scheduler) CancelAll(ctx context.Context, medicineID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := 0
	for _, r := range s.regs[medicineID] {
		if err := s.notifier.Cancel(ctx, r.alarmID); err != nil {
			s.log.Warn("cancel alarm failed", map[string]any{
				"medicine_id": medicineID,
				"alarm_id":    r.alarmID,
				"error":       err.Error(),
			})
			continue
		}
		cancelled++
	}
	delete(s.regs, medicineID)
	return cancelled
}

// Resolve descarta del índice un registro ya disparado o consumido
// (take/cancel/snooze del original). No toca el notifier: el disparo ya lo
// consumió del lado del dispositivo.
func (s *Scheduler) Resolve(medicineID, alarmID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.regs[medicineID]
	kept := live[:0]
	for _, r := range live {
		if r.alarmID == alarmID {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		delete(s.regs, medicineID)
		return
	}
	s.regs[medicineID] = kept
}

// Live devuelve la cantidad de registros vivos del medicamento.
func (s *Scheduler) Live(medicineID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs[medicineID])
}
