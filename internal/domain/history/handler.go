package history

import (
	"encoding/json"
	"net/http"
	"time"

	"medication-reminder/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/history", listHistoryHandler(svc))
}

type entryResponse struct {
	ID             string      `json:"id"`
	MedicineID     string      `json:"medicine_id,omitempty"`
	Name           string      `json:"name"`
	Dose           string      `json:"dose"`
	ScheduledTimes []time.Time `json:"scheduled_times"`
	SelectedDates  []string    `json:"selected_dates,omitempty"`
	Status         string      `json:"status"`
	At             time.Time   `json:"at"`
}

func listHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.GetSession(r.Context())

		entries, err := svc.List(r.Context(), sess)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryResponse{
				ID:             e.ID,
				MedicineID:     e.MedicineID,
				Name:           e.Name,
				Dose:           e.Dose,
				ScheduledTimes: e.ScheduledTimes,
				SelectedDates:  e.SelectedDates,
				Status:         string(e.Status),
				At:             e.At,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
