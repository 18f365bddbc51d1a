package history

import (
	"context"
	"strings"
	"time"

	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/auth"

	"github.com/google/uuid"
)

type Service struct {
	local  Repository
	mirror Mirror // puede ser nil (sin backend remoto)
	log    logger.Logger
	now    func() time.Time
}

func NewService(local Repository, mirror Mirror, log logger.Logger) *Service {
	return &Service{
		local:  local,
		mirror: mirror,
		log:    log,
		now:    time.Now,
	}
}

// Record anota el evento. El append local va primero y es incondicional: un
// take/cancel jamás se pierde por un fallo remoto. El espejo remoto solo
// aplica a sesiones autenticadas y sus fallos se loguean, no se propagan.
func (s *Service) Record(ctx context.Context, sess auth.Session, e Entry) (Entry, error) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = s.now()
	}

	if err := s.local.Append(ctx, sess, e); err != nil {
		return Entry{}, err
	}

	if s.mirror != nil && sess.IsUser() {
		if err := s.mirror.Push(ctx, sess.UserID, e); err != nil {
			s.log.Warn("history mirror failed", map[string]any{
				"entry_id": e.ID,
				"error":    err.Error(),
			})
		}
	}

	return e, nil
}

// List devuelve el historial local, más reciente primero.
func (s *Service) List(ctx context.Context, sess auth.Session) ([]Entry, error) {
	return s.local.List(ctx, sess)
}
