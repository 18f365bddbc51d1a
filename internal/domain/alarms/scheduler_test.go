package alarms

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/notify"
)

type fakeNotifier struct {
	seq        int
	scheduled  []string
	cancelled  []string
	failCancel map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failCancel: map[string]bool{}}
}

func (n *fakeNotifier) ScheduleAt(ctx context.Context, at time.Time, p notify.Payload) (string, error) {
	n.seq++
	id := fmt.Sprintf("dev-%d", n.seq)
	n.scheduled = append(n.scheduled, id)
	return id, nil
}

func (n *fakeNotifier) Cancel(ctx context.Context, alarmID string) error {
	if n.failCancel[alarmID] {
		return errors.New("not found on device")
	}
	n.cancelled = append(n.cancelled, alarmID)
	return nil
}

var instant = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func payloadAt(at time.Time) notify.Payload {
	return notify.Payload{MedicineID: "med-1", Name: "Paracetamol", Dose: "500 mg", Instant: at}
}

func TestScheduler_Schedule_SamePairIsIdempotent(t *testing.T) {
	n := newFakeNotifier()
	s := NewScheduler(n, logger.Nop())

	first, err := s.Schedule(context.Background(), payloadAt(instant))
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	second, err := s.Schedule(context.Background(), payloadAt(instant))
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}

	if s.Live("med-1") != 1 {
		t.Fatalf("expected 1 live registration, got %d", s.Live("med-1"))
	}
	// El registro viejo se cancela antes de crear el nuevo.
	if len(n.cancelled) != 1 || n.cancelled[0] != first {
		t.Fatalf("expected stale %s cancelled, got %v", first, n.cancelled)
	}
	if second == first {
		t.Fatalf("expected a fresh device alarm id")
	}
}

func TestScheduler_Schedule_DistinctInstantsAccumulate(t *testing.T) {
	n := newFakeNotifier()
	s := NewScheduler(n, logger.Nop())

	if _, err := s.Schedule(context.Background(), payloadAt(instant)); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if _, err := s.Schedule(context.Background(), payloadAt(instant.Add(4*time.Hour))); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}

	if s.Live("med-1") != 2 {
		t.Fatalf("expected 2 live registrations, got %d", s.Live("med-1"))
	}
	if len(n.cancelled) != 0 {
		t.Fatalf("no cancels expected, got %v", n.cancelled)
	}
}

func TestScheduler_CancelAll_BestEffortCount(t *testing.T) {
	n := newFakeNotifier()
	s := NewScheduler(n, logger.Nop())

	a1, _ := s.Schedule(context.Background(), payloadAt(instant))
	_, _ = s.Schedule(context.Background(), payloadAt(instant.Add(4*time.Hour)))
	_, _ = s.Schedule(context.Background(), payloadAt(instant.Add(8*time.Hour)))
	n.failCancel[a1] = true

	got := s.CancelAll(context.Background(), "med-1")
	if got != 2 {
		t.Fatalf("expected 2 effective cancels, got %d", got)
	}
	// El índice queda vacío aunque un cancel haya fallado.
	if s.Live("med-1") != 0 {
		t.Fatalf("expected empty index after CancelAll, got %d", s.Live("med-1"))
	}
}

func TestScheduler_Resolve_DropsOnlyThatRegistration(t *testing.T) {
	n := newFakeNotifier()
	s := NewScheduler(n, logger.Nop())

	a1, _ := s.Schedule(context.Background(), payloadAt(instant))
	_, _ = s.Schedule(context.Background(), payloadAt(instant.Add(4*time.Hour)))

	s.Resolve("med-1", a1)

	if s.Live("med-1") != 1 {
		t.Fatalf("expected 1 live registration, got %d", s.Live("med-1"))
	}
	// Resolve no toca el dispositivo.
	if len(n.cancelled) != 0 {
		t.Fatalf("Resolve must not cancel on the device, got %v", n.cancelled)
	}
}

func TestScheduler_Resolve_UnknownIsNoOp(t *testing.T) {
	s := NewScheduler(newFakeNotifier(), logger.Nop())
	s.Resolve("med-1", "ghost")
	if s.Live("med-1") != 0 {
		t.Fatalf("expected empty index")
	}
}
