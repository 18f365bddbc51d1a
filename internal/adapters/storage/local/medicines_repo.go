// Package local implementa los repos locales serializando colecciones JSON
// completas sobre el kv del dispositivo, una clave por partición.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"medication-reminder/internal/domain/medicine"
	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/kv"
)

const medicinesIndexKey = "medicines:partitions"

func medicinesKey(owner medicine.Owner) string {
	if owner.Mode == medicine.OwnerUser {
		return "medicines:user:" + owner.UserID
	}
	return "medicines:guest"
}

func ownerFromKey(key string) medicine.Owner {
	if key == "medicines:guest" {
		return medicine.GuestOwner()
	}
	return medicine.UserOwner(key[len("medicines:user:"):])
}

type storedMedicine struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Dose          string      `json:"dose"`
	Times         []time.Time `json:"times"`
	SelectedDates []string    `json:"selected_dates,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// MedicineRepo implementa medicine.Repository sobre el kv local.
// Sin token de concurrencia optimista: el modelo asume un escritor en vuelo
// por partición; el mutex cubre el read-modify-write del servidor de tests.
type MedicineRepo struct {
	mu    sync.Mutex
	store kv.Store
	log   logger.Logger
}

func NewMedicineRepo(store kv.Store, log logger.Logger) *MedicineRepo {
	return &MedicineRepo{store: store, log: log}
}

func (r *MedicineRepo) List(ctx context.Context, owner medicine.Owner) ([]medicine.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, owner)
}

func (r *MedicineRepo) FindByID(ctx context.Context, id string) (medicine.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.partitions(ctx) {
		items, err := r.load(ctx, ownerFromKey(key))
		if err != nil {
			return medicine.Item{}, err
		}
		for _, it := range items {
			if it.ID == id {
				return it, nil
			}
		}
	}
	return medicine.Item{}, medicine.ErrNotFound
}

func (r *MedicineRepo) Save(ctx context.Context, item medicine.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx, item.Owner)
	if err != nil {
		return err
	}

	replaced := false
	for i, it := range items {
		if it.ID == item.ID {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}

	if err := r.persist(ctx, item.Owner, items); err != nil {
		return err
	}
	return r.registerPartition(ctx, medicinesKey(item.Owner))
}

func (r *MedicineRepo) RemoveOccurrence(ctx context.Context, owner medicine.Owner, id string, instant time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx, owner)
	if err != nil {
		return false, err
	}

	removed := false
	for i, it := range items {
		if it.ID != id {
			continue
		}
		kept := make([]time.Time, 0, len(it.Times))
		for _, t := range it.Times {
			if t.Equal(instant) {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		// Si era la última, el item queda con Times vacío: se conserva.
		items[i].Times = kept
		break
	}
	if !removed {
		return false, nil
	}
	return true, r.persist(ctx, owner, items)
}

func (r *MedicineRepo) Delete(ctx context.Context, owner medicine.Owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx, owner)
	if err != nil {
		return err
	}

	kept := make([]medicine.Item, 0, len(items))
	for _, it := range items {
		if it.ID == id {
			continue
		}
		kept = append(kept, it)
	}
	return r.persist(ctx, owner, kept)
}

func (r *MedicineRepo) load(ctx context.Context, owner medicine.Owner) ([]medicine.Item, error) {
	raw, ok, err := r.store.Get(ctx, medicinesKey(owner))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", medicine.ErrStorage, err)
	}
	if !ok || raw == "" {
		return []medicine.Item{}, nil
	}

	var stored []storedMedicine
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		// Valor malformado se trata como vacío, nunca como crash.
		r.log.Warn("malformed medicines document, treating as empty", map[string]any{
			"key": medicinesKey(owner),
		})
		return []medicine.Item{}, nil
	}

	out := make([]medicine.Item, 0, len(stored))
	for _, s := range stored {
		out = append(out, medicine.Item{
			ID:            s.ID,
			Name:          s.Name,
			Dose:          s.Dose,
			Times:         s.Times,
			SelectedDates: s.SelectedDates,
			Owner:         owner,
			CreatedAt:     s.CreatedAt,
		})
	}
	return out, nil
}

func (r *MedicineRepo) persist(ctx context.Context, owner medicine.Owner, items []medicine.Item) error {
	stored := make([]storedMedicine, 0, len(items))
	for _, it := range items {
		stored = append(stored, storedMedicine{
			ID:            it.ID,
			Name:          it.Name,
			Dose:          it.Dose,
			Times:         it.Times,
			SelectedDates: it.SelectedDates,
			CreatedAt:     it.CreatedAt,
		})
	}

	b, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("%w: %v", medicine.ErrStorage, err)
	}
	if err := r.store.Set(ctx, medicinesKey(owner), string(b)); err != nil {
		return fmt.Errorf("%w: %v", medicine.ErrStorage, err)
	}
	return nil
}

// partitions lista las claves de partición conocidas. La guest siempre entra:
// existe aunque nadie haya guardado todavía.
func (r *MedicineRepo) partitions(ctx context.Context) []string {
	keys := []string{"medicines:guest"}

	raw, ok, err := r.store.Get(ctx, medicinesIndexKey)
	if err != nil || !ok {
		return keys
	}
	var known []string
	if err := json.Unmarshal([]byte(raw), &known); err != nil {
		return keys
	}
	for _, k := range known {
		if k != "medicines:guest" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (r *MedicineRepo) registerPartition(ctx context.Context, key string) error {
	known := r.partitions(ctx)
	for _, k := range known {
		if k == key {
			return nil
		}
	}
	known = append(known, key)

	b, err := json.Marshal(known)
	if err != nil {
		return fmt.Errorf("%w: %v", medicine.ErrStorage, err)
	}
	if err := r.store.Set(ctx, medicinesIndexKey, string(b)); err != nil {
		return fmt.Errorf("%w: %v", medicine.ErrStorage, err)
	}
	return nil
}
