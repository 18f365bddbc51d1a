package postgres

import (
	"context"

	"medication-reminder/internal/domain/catalog"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

func (r *CatalogRepo) List(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, doses, created_at
		FROM medications_catalog
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Entry, 0)
	for rows.Next() {
		var e catalog.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Doses, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) Upsert(ctx context.Context, e catalog.Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medications_catalog (id, name, doses, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET doses = EXCLUDED.doses
	`,
		e.ID,
		e.Name,
		e.Doses,
	)
	return err
}
