package medicine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"medication-reminder/internal/domain/history"
	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/auth"
	"medication-reminder/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	// ErrValidation indica entrada incompleta o inválida. Bloquea el guardado
	// sin mutar estado; totalmente recuperable.
	ErrValidation = errors.New("validation error")
)

// SnoozeOffset es el corrimiento fijo de un snooze.
const SnoozeOffset = 10 * time.Minute

// AlarmScheduler es lo que el orquestador necesita del planificador.
type AlarmScheduler interface {
	Schedule(ctx context.Context, p notify.Payload) (alarmID string, err error)
	CancelAll(ctx context.Context, medicineID string) int
	Resolve(medicineID, alarmID string)
}

// HistoryRecorder anota eventos de adherencia.
type HistoryRecorder interface {
	Record(ctx context.Context, sess auth.Session, e history.Entry) (history.Entry, error)
}

// CatalogChecker valida nombre y dosis contra el catálogo al crear.
type CatalogChecker interface {
	HasDose(ctx context.Context, name, dose string) (bool, error)
}

// Action es la elección del usuario cuando una alarma dispara.
type Action string

const (
	ActionTake   Action = "take"
	ActionSnooze Action = "snooze"
	ActionCancel Action = "cancel"
)

// ScheduleTier clasifica el resultado del agendado en tres niveles visibles
// al usuario; no es un booleano éxito/fallo. Un guardado cuyo agendado falló
// en silencio tiene que contarse, sin bloquear el dato ya persistido.
type ScheduleTier string

const (
	TierAll     ScheduleTier = "all"
	TierPartial ScheduleTier = "partial"
	TierNone    ScheduleTier = "none"
)

// Outcome resume el agendado de un guardado.
type Outcome struct {
	Requested int
	Scheduled int
	Tier      ScheduleTier
}

func outcomeFor(requested, scheduled int) Outcome {
	o := Outcome{Requested: requested, Scheduled: scheduled}
	switch {
	case scheduled == requested:
		o.Tier = TierAll
	case scheduled == 0:
		o.Tier = TierNone
	default:
		o.Tier = TierPartial
	}
	return o
}

// OwnerFromSession deriva la partición local desde la sesión explícita.
func OwnerFromSession(sess auth.Session) Owner {
	if sess.IsUser() {
		return UserOwner(sess.UserID)
	}
	return GuestOwner()
}

// Service es el orquestador del ciclo de vida de recordatorios.
type Service struct {
	repo    Repository
	alarms  AlarmScheduler
	history HistoryRecorder
	catalog CatalogChecker
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, alarms AlarmScheduler, hist HistoryRecorder, cat CatalogChecker, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		alarms:  alarms,
		history: hist,
		catalog: cat,
		log:     log,
		now:     time.Now,
	}
}

// SaveInput es la entrada del flujo de guardado. ID vacío crea; con ID se
// edita reemplazando dosis, horas y fechas por completo.
type SaveInput struct {
	ID            string
	Name          string
	Dose          string
	Times         []TimeOfDay
	SelectedDates []string
}

// Save valida, resuelve cada hora a su próxima ocurrencia, persiste y agenda
// las alarmas. La persistencia completa SIEMPRE antes de agendar: un corte a
// mitad deja el medicamento guardado pero sub-agendado (recuperable
// re-guardando), nunca agendado sin guardar.
func (s *Service) Save(ctx context.Context, sess auth.Session, in SaveInput) (Item, Outcome, error) {
	owner := OwnerFromSession(sess)

	if err := s.validate(ctx, in); err != nil {
		return Item{}, Outcome{}, err
	}

	now := s.now()
	times := make([]time.Time, 0, len(in.Times))
	for _, t := range DedupTimes(in.Times) {
		times = append(times, ResolveNextOccurrence(now, t))
	}

	item := Item{
		ID:            in.ID,
		Name:          strings.TrimSpace(in.Name),
		Dose:          strings.TrimSpace(in.Dose),
		Times:         times,
		SelectedDates: in.SelectedDates,
		Owner:         owner,
		CreatedAt:     now,
	}

	if in.ID == "" {
		item.ID = uuid.NewString()
	} else {
		existing, err := s.repo.FindByID(ctx, in.ID)
		if err != nil {
			return Item{}, Outcome{}, err
		}
		if existing.Owner != owner {
			return Item{}, Outcome{}, ErrNotFound
		}
		item.CreatedAt = existing.CreatedAt

		// Cancelar registros viejos antes de reescribir; su fallo se loguea
		// y no aborta el guardado.
		s.alarms.CancelAll(ctx, item.ID)
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return Item{}, Outcome{}, err
	}

	scheduled := 0
	for _, instant := range item.Times {
		_, err := s.alarms.Schedule(ctx, notify.Payload{
			MedicineID: item.ID,
			Name:       item.Name,
			Dose:       item.Dose,
			Instant:    instant,
		})
		if err != nil {
			s.log.Warn("alarm scheduling failed", map[string]any{
				"medicine_id": item.ID,
				"instant":     instant.Format(time.RFC3339),
				"error":       err.Error(),
			})
			continue
		}
		scheduled++
	}

	return item, outcomeFor(len(item.Times), scheduled), nil
}

func (s *Service) validate(ctx context.Context, in SaveInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: falta el medicamento", ErrValidation)
	}
	if strings.TrimSpace(in.Dose) == "" {
		return fmt.Errorf("%w: falta la dosis", ErrValidation)
	}
	// Misma regla para crear y editar: al menos una fecha.
	if len(in.SelectedDates) == 0 {
		return fmt.Errorf("%w: falta al menos una fecha", ErrValidation)
	}
	for _, d := range in.SelectedDates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("%w: fecha inválida %q", ErrValidation, d)
		}
	}
	if len(in.Times) == 0 {
		return fmt.Errorf("%w: falta al menos una hora", ErrValidation)
	}
	if HasDuplicateTimes(in.Times) {
		return fmt.Errorf("%w: horas duplicadas", ErrValidation)
	}

	if in.ID == "" {
		ok, err := s.catalog.HasDose(ctx, in.Name, in.Dose)
		if err != nil {
			// Catálogo caído: no bloqueamos el guardado por una verificación
			// de solo-creación; queda logueado.
			s.log.Warn("catalog check skipped", map[string]any{"error": err.Error()})
			return nil
		}
		if !ok {
			return fmt.Errorf("%w: medicamento o dosis fuera del catálogo", ErrValidation)
		}
	}
	return nil
}

// List devuelve los medicamentos de la partición de la sesión.
func (s *Service) List(ctx context.Context, sess auth.Session) ([]Item, error) {
	return s.repo.List(ctx, OwnerFromSession(sess))
}

// Get busca por id dentro de la partición de la sesión.
func (s *Service) Get(ctx context.Context, sess auth.Session, id string) (Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if item.Owner != OwnerFromSession(sess) {
		return Item{}, ErrNotFound
	}
	return item, nil
}

// Delete cancela los registros del medicamento y elimina el registro local.
func (s *Service) Delete(ctx context.Context, sess auth.Session, id string) error {
	item, err := s.Get(ctx, sess, id)
	if err != nil {
		return err
	}
	s.alarms.CancelAll(ctx, item.ID)
	return s.repo.Delete(ctx, item.Owner, item.ID)
}

// OnAlarmFired aplica la elección del usuario sobre una alarma disparada.
//
//   - take: anota Tomado (scheduledTimes = [instante]) y quita esa ocurrencia.
//   - snooze: reemplaza el instante por instante+10m, persiste y agenda la
//     alarma nueva. No se anota historial: todavía no es un evento de
//     adherencia completado.
//   - cancel: anota Cancelado y quita la ocurrencia, igual que take; dejarla
//     haría re-disparar algo que el usuario descartó explícitamente.
func (s *Service) OnAlarmFired(ctx context.Context, sess auth.Session, fired notify.FiredPayload, action Action) (Item, error) {
	item, err := s.repo.FindByID(ctx, fired.MedicineID)
	if err != nil {
		return Item{}, err
	}

	switch action {
	case ActionTake:
		if _, err := s.recordAdherence(ctx, sess, item, fired.Instant, history.StatusTaken); err != nil {
			return Item{}, err
		}
		if _, err := s.repo.RemoveOccurrence(ctx, item.Owner, item.ID, fired.Instant); err != nil {
			return Item{}, err
		}
		s.alarms.Resolve(item.ID, fired.AlarmID)

	case ActionSnooze:
		snoozed := fired.Instant.Add(SnoozeOffset)
		item.Times = replaceOccurrence(item.Times, fired.Instant, snoozed)
		if err := s.repo.Save(ctx, item); err != nil {
			return Item{}, err
		}
		s.alarms.Resolve(item.ID, fired.AlarmID)
		if _, err := s.alarms.Schedule(ctx, notify.Payload{
			MedicineID: item.ID,
			Name:       item.Name,
			Dose:       item.Dose,
			Instant:    snoozed,
		}); err != nil {
			s.log.Warn("snooze rescheduling failed", map[string]any{
				"medicine_id": item.ID,
				"error":       err.Error(),
			})
		}

	case ActionCancel:
		if _, err := s.recordAdherence(ctx, sess, item, fired.Instant, history.StatusCancelled); err != nil {
			return Item{}, err
		}
		if _, err := s.repo.RemoveOccurrence(ctx, item.Owner, item.ID, fired.Instant); err != nil {
			return Item{}, err
		}
		s.alarms.Resolve(item.ID, fired.AlarmID)

	default:
		return Item{}, fmt.Errorf("%w: acción desconocida %q", ErrValidation, action)
	}

	return s.repo.FindByID(ctx, item.ID)
}

func (s *Service) recordAdherence(ctx context.Context, sess auth.Session, item Item, instant time.Time, status history.Status) (history.Entry, error) {
	return s.history.Record(ctx, sess, history.Entry{
		MedicineID:     item.ID,
		Name:           item.Name,
		Dose:           item.Dose,
		ScheduledTimes: []time.Time{instant},
		SelectedDates:  item.SelectedDates,
		Status:         status,
	})
}

// replaceOccurrence quita old y agrega new manteniendo el orden por hora del
// día ascendente. Si old no estaba (ya removida), new se agrega igual.
func replaceOccurrence(times []time.Time, old, new time.Time) []time.Time {
	out := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.Equal(old) {
			continue
		}
		out = append(out, t)
	}
	out = append(out, new)
	sort.Slice(out, func(i, j int) bool {
		mi := out[i].Hour()*60 + out[i].Minute()
		mj := out[j].Hour()*60 + out[j].Minute()
		if mi != mj {
			return mi < mj
		}
		return out[i].Before(out[j])
	})
	return out
}
