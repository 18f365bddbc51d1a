package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"medication-reminder/internal/domain/history"
	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/auth"
	"medication-reminder/internal/ports/kv"
)

func historyKey(sess auth.Session) string {
	if sess.IsUser() {
		return "history:user:" + sess.UserID
	}
	return "history:guest"
}

type storedEntry struct {
	ID             string      `json:"id"`
	MedicineID     string      `json:"medicine_id,omitempty"`
	Name           string      `json:"name"`
	Dose           string      `json:"dose"`
	ScheduledTimes []time.Time `json:"scheduled_times"`
	SelectedDates  []string    `json:"selected_dates,omitempty"`
	Status         string      `json:"status"`
	At             time.Time   `json:"at"`
}

// HistoryRepo implementa history.Repository sobre el kv local. El documento
// se guarda con la entrada más reciente primero, que es el orden de lectura.
type HistoryRepo struct {
	mu    sync.Mutex
	store kv.Store
	log   logger.Logger
}

func NewHistoryRepo(store kv.Store, log logger.Logger) *HistoryRepo {
	return &HistoryRepo{store: store, log: log}
}

func (r *HistoryRepo) Append(ctx context.Context, sess auth.Session, e history.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx, sess)
	if err != nil {
		return err
	}

	entries = append([]storedEntry{toStored(e)}, entries...)

	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return r.store.Set(ctx, historyKey(sess), string(b))
}

func (r *HistoryRepo) List(ctx context.Context, sess auth.Session) ([]history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	out := make([]history.Entry, 0, len(stored))
	for _, s := range stored {
		out = append(out, history.Entry{
			ID:             s.ID,
			MedicineID:     s.MedicineID,
			Name:           s.Name,
			Dose:           s.Dose,
			ScheduledTimes: s.ScheduledTimes,
			SelectedDates:  s.SelectedDates,
			Status:         history.Status(s.Status),
			At:             s.At,
		})
	}
	return out, nil
}

func (r *HistoryRepo) load(ctx context.Context, sess auth.Session) ([]storedEntry, error) {
	raw, ok, err := r.store.Get(ctx, historyKey(sess))
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []storedEntry{}, nil
	}

	var entries []storedEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		r.log.Warn("malformed history document, treating as empty", map[string]any{
			"key": historyKey(sess),
		})
		return []storedEntry{}, nil
	}
	return entries, nil
}

func toStored(e history.Entry) storedEntry {
	return storedEntry{
		ID:             e.ID,
		MedicineID:     e.MedicineID,
		Name:           e.Name,
		Dose:           e.Dose,
		ScheduledTimes: e.ScheduledTimes,
		SelectedDates:  e.SelectedDates,
		Status:         string(e.Status),
		At:             e.At,
	}
}
