package medicine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"medication-reminder/internal/middleware"
	"medication-reminder/internal/ports/notify"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medicines", func(mr chi.Router) {
		mr.Post("/", saveMedicineHandler(svc))
		mr.Get("/", listMedicinesHandler(svc))
		mr.Get("/{medID}", getMedicineHandler(svc))
		mr.Put("/{medID}", updateMedicineHandler(svc))
		mr.Delete("/{medID}", deleteMedicineHandler(svc))

		// La capa de dispositivo entrega acá la elección del usuario cuando
		// una alarma dispara.
		mr.Post("/{medID}/alarm-actions", alarmActionHandler(svc))
	})
}

type saveMedicineRequest struct {
	Name          string   `json:"name"`
	Dose          string   `json:"dose"`
	Times         []string `json:"times"` // HH:MM
	SelectedDates []string `json:"selected_dates"`
}

type medicineResponse struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Dose          string      `json:"dose"`
	Times         []time.Time `json:"times"`
	SelectedDates []string    `json:"selected_dates,omitempty"`
	Owner         string      `json:"owner"`
	CreatedAt     time.Time   `json:"created_at"`
}

type scheduleOutcomeResponse struct {
	Requested int    `json:"requested"`
	Scheduled int    `json:"scheduled"`
	Tier      string `json:"tier"`
	Message   string `json:"message"`
}

type saveMedicineResponse struct {
	Medicine medicineResponse        `json:"medicine"`
	Schedule scheduleOutcomeResponse `json:"schedule"`
}

type alarmActionRequest struct {
	Instant string `json:"instant"` // RFC3339
	AlarmID string `json:"alarm_id,omitempty"`
	Action  string `json:"action"` // take | snooze | cancel
}

func saveMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handleSave(svc, "", w, r)
	}
}

func updateMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handleSave(svc, chi.URLParam(r, "medID"), w, r)
	}
}

func handleSave(svc *Service, id string, w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req saveMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	times := make([]TimeOfDay, 0, len(req.Times))
	for _, raw := range req.Times {
		t, err := ParseTimeOfDay(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		times = append(times, t)
	}

	item, outcome, err := svc.Save(r.Context(), sess, SaveInput{
		ID:            id,
		Name:          req.Name,
		Dose:          req.Dose,
		Times:         times,
		SelectedDates: req.SelectedDates,
	})
	if err != nil {
		writeMedicineError(w, err)
		return
	}

	status := http.StatusCreated
	if id != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, saveMedicineResponse{
		Medicine: toMedicineResponse(item),
		Schedule: toOutcomeResponse(outcome),
	})
}

func listMedicinesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.GetSession(r.Context())

		items, err := svc.List(r.Context(), sess)
		if err != nil {
			writeMedicineError(w, err)
			return
		}

		out := make([]medicineResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toMedicineResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.GetSession(r.Context())

		item, err := svc.Get(r.Context(), sess, chi.URLParam(r, "medID"))
		if err != nil {
			writeMedicineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicineResponse(item))
	}
}

func deleteMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.GetSession(r.Context())

		if err := svc.Delete(r.Context(), sess, chi.URLParam(r, "medID")); err != nil {
			writeMedicineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func alarmActionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.GetSession(r.Context())
		medID := chi.URLParam(r, "medID")

		var req alarmActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		instant, err := time.Parse(time.RFC3339, req.Instant)
		if err != nil {
			http.Error(w, "instant must be RFC3339", http.StatusBadRequest)
			return
		}

		item, err := svc.OnAlarmFired(r.Context(), sess, notify.FiredPayload{
			AlarmID: req.AlarmID,
			Payload: notify.Payload{MedicineID: medID, Instant: instant},
		}, Action(req.Action))
		if err != nil {
			writeMedicineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicineResponse(item))
	}
}

func toMedicineResponse(it Item) medicineResponse {
	return medicineResponse{
		ID:            it.ID,
		Name:          it.Name,
		Dose:          it.Dose,
		Times:         it.Times,
		SelectedDates: it.SelectedDates,
		Owner:         string(it.Owner.Mode),
		CreatedAt:     it.CreatedAt,
	}
}

// Los tres niveles son mensajes distintos a propósito: al usuario hay que
// decirle si sus recordatorios quedaron a medias, sin bloquear el dato ya
// guardado.
func toOutcomeResponse(o Outcome) scheduleOutcomeResponse {
	var msg string
	switch o.Tier {
	case TierAll:
		msg = "Recordatorios programados"
	case TierPartial:
		msg = fmt.Sprintf("Se programaron %d de %d recordatorios", o.Scheduled, o.Requested)
	default:
		msg = "No se pudo programar ningún recordatorio"
	}
	return scheduleOutcomeResponse{
		Requested: o.Requested,
		Scheduled: o.Scheduled,
		Tier:      string(o.Tier),
		Message:   msg,
	}
}

func writeMedicineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medicine not found", http.StatusNotFound)
	case errors.Is(err, ErrStorage):
		// Fatal para esta operación; la UI ofrece reintentar.
		http.Error(w, "storage error, retry", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
