package medicine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay es una hora de reloj elegida por el usuario, sin fecha.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay interpreta "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("hora inválida %q: se espera HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("hora inválida %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("hora inválida %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// ResolveNextOccurrence convierte una hora de reloj en el instante futuro
// más cercano con esa hora:minuto. Si la hora de hoy todavía no pasó (empate
// incluido: >=, no >), resuelve a hoy; si ya pasó, a mañana. Segundos y
// nanosegundos en cero; la zona horaria se toma de now.
func ResolveNextOccurrence(now time.Time, t TimeOfDay) time.Time {
	cand := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if cand.Before(now) {
		cand = cand.AddDate(0, 0, 1)
	}
	return cand
}

// DedupTimes colapsa horas con el mismo hora:minuto y devuelve el resultado
// ordenado por hora del día ascendente. El dedup se hace ANTES de resolver:
// dos instantes resueltos en días distintos parecerían diferentes.
func DedupTimes(ts []TimeOfDay) []TimeOfDay {
	seen := make(map[int]bool, len(ts))
	out := make([]TimeOfDay, 0, len(ts))
	for _, t := range ts {
		k := t.minuteOfDay()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].minuteOfDay() < out[j].minuteOfDay()
	})
	return out
}

// HasDuplicateTimes detecta dos entradas con el mismo hora:minuto.
func HasDuplicateTimes(ts []TimeOfDay) bool {
	seen := make(map[int]bool, len(ts))
	for _, t := range ts {
		k := t.minuteOfDay()
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}
