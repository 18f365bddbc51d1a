package catalog

import (
	"context"
	"errors"
	"testing"

	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/auth"
)

type fakeCatalogRepo struct {
	entries   []Entry
	listCalls int
	failList  bool
	upserts   []Entry
}

func (r *fakeCatalogRepo) List(ctx context.Context) ([]Entry, error) {
	r.listCalls++
	if r.failList {
		return nil, errors.New("connection refused")
	}
	return r.entries, nil
}

func (r *fakeCatalogRepo) Upsert(ctx context.Context, e Entry) error {
	r.upserts = append(r.upserts, e)
	return nil
}

func seededRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{entries: []Entry{
		{ID: "1", Name: "Amoxicilina", Doses: []string{"500 mg"}},
		{ID: "2", Name: "Comparatol", Doses: []string{"100 mg"}},
		{ID: "3", Name: "Ibuprofeno", Doses: []string{"200 mg", "400 mg"}},
		{ID: "4", Name: "Paracetamol", Doses: []string{"500 mg", "1 g"}},
		{ID: "5", Name: "Paracetamol Forte", Doses: []string{"1 g"}},
	}}
}

func TestSearch_PrefixTierWinsOverSubstring(t *testing.T) {
	svc := NewService(seededRepo(), logger.Nop())

	// "para" matchea "Paracetamol" por prefijo y "Comparatol" por substring;
	// con prefijos presentes, el substring queda fuera.
	got, err := svc.Search(context.Background(), "para")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d: %v", len(got), got)
	}
	for _, e := range got {
		if e.Name == "Comparatol" {
			t.Fatalf("substring match leaked into prefix tier: %v", got)
		}
	}
}

func TestSearch_FallsBackToSubstring(t *testing.T) {
	svc := NewService(seededRepo(), logger.Nop())

	got, err := svc.Search(context.Background(), "cilin")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Amoxicilina" {
		t.Fatalf("expected [Amoxicilina], got %v", got)
	}
}

func TestSearch_ShortQuery_SkipsNetwork(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, logger.Nop())

	got, err := svc.Search(context.Background(), "p")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if repo.listCalls != 0 {
		t.Fatalf("short query must not hit the repo, got %d calls", repo.listCalls)
	}
}

func TestSearch_CapsAtTwoResults(t *testing.T) {
	repo := seededRepo()
	repo.entries = append(repo.entries, Entry{ID: "6", Name: "Paracetamol Infantil", Doses: []string{"250 mg"}})
	svc := NewService(repo, logger.Nop())

	got, err := svc.Search(context.Background(), "paracetamol")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(got))
	}
}

func TestSearch_IsCaseInsensitive(t *testing.T) {
	svc := NewService(seededRepo(), logger.Nop())

	got, err := svc.Search(context.Background(), "PARA")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected case-insensitive matches")
	}
}

func TestLoad_Unavailable_DegradesToEmpty(t *testing.T) {
	repo := seededRepo()
	repo.failList = true
	svc := NewService(repo, logger.Nop())

	got, err := svc.Load(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestHasDose(t *testing.T) {
	svc := NewService(seededRepo(), logger.Nop())

	ok, err := svc.HasDose(context.Background(), "paracetamol", "1 g")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.HasDose(context.Background(), "Paracetamol", "750 mg")
	if err != nil || ok {
		t.Fatalf("expected dose mismatch, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.HasDose(context.Background(), "Noexistol", "1 g")
	if err != nil || ok {
		t.Fatalf("expected unknown name, got ok=%v err=%v", ok, err)
	}
}

func TestSeed_GuestIsNoOp(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, logger.Nop())

	err := svc.Seed(context.Background(), auth.Guest(), []Entry{{Name: "Loratadina", Doses: []string{"10 mg"}}})
	if err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	if len(repo.upserts) != 0 {
		t.Fatalf("guest seed must not write, got %d upserts", len(repo.upserts))
	}
}

func TestSeed_UserUpserts_AndFillsIDs(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, logger.Nop())

	err := svc.Seed(context.Background(), auth.ForUser("user-1"), []Entry{
		{Name: "Loratadina", Doses: []string{"10 mg"}},
	})
	if err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(repo.upserts))
	}
	if repo.upserts[0].ID == "" {
		t.Fatalf("expected generated ID")
	}
}

func TestSeed_RejectsEmptyEntries(t *testing.T) {
	svc := NewService(seededRepo(), logger.Nop())

	err := svc.Seed(context.Background(), auth.ForUser("user-1"), []Entry{{Name: " ", Doses: []string{"1 g"}}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
