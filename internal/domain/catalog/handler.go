package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"medication-reminder/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el catálogo. searchLimiter puede ser nil.
func RegisterRoutes(r chi.Router, svc *Service, searchLimiter func(http.Handler) http.Handler) {
	r.Route("/catalog", func(cr chi.Router) {
		cr.Get("/", loadCatalogHandler(svc))
		if searchLimiter != nil {
			cr.With(searchLimiter).Get("/search", searchCatalogHandler(svc))
		} else {
			cr.Get("/search", searchCatalogHandler(svc))
		}
		cr.Post("/seed", seedCatalogHandler(svc))
	})
}

type entryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Doses     []string  `json:"doses"`
	CreatedAt time.Time `json:"created_at"`
}

type seedRequest struct {
	Entries []seedEntry `json:"entries"`
}

type seedEntry struct {
	Name  string   `json:"name"`
	Doses []string `json:"doses"`
}

func loadCatalogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Load(r.Context())
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponses(entries))
	}
}

func searchCatalogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponses(entries))
	}
}

func seedCatalogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := middleware.GetSession(r.Context())

		var req seedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		entries := make([]Entry, 0, len(req.Entries))
		for _, e := range req.Entries {
			entries = append(entries, Entry{Name: e.Name, Doses: e.Doses})
		}

		if err := svc.Seed(r.Context(), sess, entries); err != nil {
			writeCatalogError(w, err)
			return
		}
		// Sin sesión autenticada la siembra es un no-op; igual 204.
		w.WriteHeader(http.StatusNoContent)
	}
}

func toEntryResponses(entries []Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			Name:      e.Name,
			Doses:     e.Doses,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnavailable):
		// Recuperable: el caller puede reintentar.
		http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
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
