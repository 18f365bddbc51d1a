package postgres

import (
	"context"
	"time"

	"medication-reminder/internal/domain/history"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryMirror implementa history.Mirror: réplica best-effort del historial
// local hacia medication_history, siempre bajo el usuario de la sesión.
type HistoryMirror struct {
	pool *pgxpool.Pool
}

func NewHistoryMirror(pool *pgxpool.Pool) *HistoryMirror {
	return &HistoryMirror{pool: pool}
}

func (m *HistoryMirror) Push(ctx context.Context, userID string, e history.Entry) error {
	var medID *string
	if e.MedicineID != "" {
		medID = &e.MedicineID
	}

	// selected_dates es DATE[]: parseamos acá y descartamos valores que no
	// sean YYYY-MM-DD en lugar de fallar la réplica completa.
	var dates []time.Time
	for _, d := range e.SelectedDates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}

	_, err := m.pool.Exec(ctx, `
		INSERT INTO medication_history (
			id, user_id, medication_id,
			med_name, dose,
			scheduled_times, selected_dates,
			status, taken_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
	`,
		e.ID,
		userID,
		medID,
		e.Name,
		e.Dose,
		e.ScheduledTimes,
		dates,
		string(e.Status),
		e.At,
	)
	return err
}
