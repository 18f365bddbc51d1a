package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medication-reminder/internal/domain/catalog"

	"github.com/google/uuid"
)

type catalogRepo struct {
	mu     sync.RWMutex
	byName map[string]catalog.Entry
}

// NewCatalogRepo crea el catálogo in-memory para dev y tests.
func NewCatalogRepo(seed []catalog.Entry) catalog.Repository {
	r := &catalogRepo{byName: make(map[string]catalog.Entry)}
	for _, e := range seed {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		r.byName[strings.ToLower(e.Name)] = e
	}
	return r
}

func (r *catalogRepo) List(ctx context.Context) ([]catalog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Entry, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *catalogRepo) Upsert(ctx context.Context, e catalog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(e.Name)
	if existing, ok := r.byName[key]; ok {
		existing.Doses = e.Doses
		r.byName[key] = existing
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.byName[key] = e
	return nil
}
