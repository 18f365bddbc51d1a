package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	// ErrUnavailable indica que el catálogo remoto no respondió; condición
	// recuperable, el caller puede reintentar.
	ErrUnavailable  = errors.New("catalog unavailable")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	minQueryLen = 2
	prefixLen   = 4
	maxResults  = 2
)

type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Load trae el catálogo completo, ordenado por nombre. Ante fallo de
// transporte degrada a lista vacía con ErrUnavailable.
func (s *Service) Load(ctx context.Context) ([]Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn("catalog load failed", map[string]any{"error": err.Error()})
		return []Entry{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return entries, nil
}

// Search aplica el ranking de dos niveles, tope 2 resultados:
// con query normalizada de >=4 caracteres primero se buscan nombres cuyo
// prefijo de 4 coincida (case-insensitive); si hay alguno, se devuelven esos
// exclusivamente. Si no, substring en cualquier parte del nombre. Queries de
// menos de 2 caracteres devuelven vacío sin tocar la red.
func (s *Service) Search(ctx context.Context, query string) ([]Entry, error) {
	q := []rune(strings.ToLower(strings.TrimSpace(query)))
	if len(q) < minQueryLen {
		return []Entry{}, nil
	}

	entries, err := s.Load(ctx)
	if err != nil {
		return []Entry{}, err
	}

	if len(q) >= prefixLen {
		prefix := string(q[:prefixLen])
		byPrefix := make([]Entry, 0, maxResults)
		for _, e := range entries {
			name := []rune(strings.ToLower(e.Name))
			if len(name) >= prefixLen && string(name[:prefixLen]) == prefix {
				byPrefix = append(byPrefix, e)
				if len(byPrefix) == maxResults {
					break
				}
			}
		}
		if len(byPrefix) > 0 {
			return byPrefix, nil
		}
	}

	bySubstring := make([]Entry, 0, maxResults)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), string(q)) {
			bySubstring = append(bySubstring, e)
			if len(bySubstring) == maxResults {
				break
			}
		}
	}
	return bySubstring, nil
}

// HasDose verifica que el nombre exista en el catálogo y que la dosis sea
// una de sus opciones. Usado al crear un medicamento; no se revalida después.
func (s *Service) HasDose(ctx context.Context, name, dose string) (bool, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, e := range entries {
		if !strings.EqualFold(e.Name, name) {
			continue
		}
		for _, d := range e.Doses {
			if d == dose {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

// Seed inicializa el catálogo. Solo con sesión autenticada; sin sesión es
// un no-op (las lecturas sí funcionan sin autenticar).
func (s *Service) Seed(ctx context.Context, sess auth.Session, entries []Entry) error {
	if !sess.IsUser() {
		return nil
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" || len(e.Doses) == 0 {
			return ErrInvalidInput
		}
		if strings.TrimSpace(e.ID) == "" {
			e.ID = uuid.NewString()
		}
		if err := s.repo.Upsert(ctx, e); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}
