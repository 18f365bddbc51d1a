package router

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"medication-reminder/internal/adapters/notify/timer"
	"medication-reminder/internal/adapters/storage/kvstore"
	"medication-reminder/internal/adapters/storage/local"
	mem "medication-reminder/internal/adapters/storage/memory"
	pg "medication-reminder/internal/adapters/storage/postgres"
	"medication-reminder/internal/domain/alarms"
	"medication-reminder/internal/domain/catalog"
	"medication-reminder/internal/domain/history"
	"medication-reminder/internal/domain/medicine"
	"medication-reminder/internal/middleware"
	"medication-reminder/internal/platform/logger"
	"medication-reminder/internal/ports/auth"
	"medication-reminder/internal/ports/kv"
	"medication-reminder/internal/ports/notify"

	_ "medication-reminder/internal/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: X-Debug-User-ID)

	// Opcional: si viene, catálogo y espejo de historial van a Postgres.
	// Si no, se intenta DB_DSN por env; sin eso, catálogo in-memory y sin
	// espejo remoto.
	DB *pgxpool.Pool

	// Opcional: kv local. Sin esto se intenta LOCAL_STORE (ruta sqlite) y
	// se cae a memoria.
	KV kv.Store

	// Opcional: primitiva de notificaciones. Sin esto, timers en proceso.
	Notifier notify.Notifier

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SessionContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Persistencia local (kv)
	store := opts.KV
	if store == nil {
		if path := os.Getenv("LOCAL_STORE"); path != "" {
			s, err := kvstore.OpenSQLite(path)
			if err != nil {
				log.Warn("sqlite local store unavailable, falling back to memory", map[string]any{
					"path":  path,
					"error": err.Error(),
				})
			} else {
				store = s
			}
		}
		if store == nil {
			store = kvstore.NewMemory()
		}
	}

	// Almacén remoto (catálogo + espejo de historial)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			if err := pg.Migrate(dsn); err != nil {
				log.Warn("postgres migration failed", map[string]any{"error": err.Error()})
			} else if pool, err := pg.Open(context.Background(), dsn); err != nil {
				log.Warn("postgres unavailable", map[string]any{"error": err.Error()})
			} else {
				db = pool
			}
		}
	}

	var (
		catalogRepo catalog.Repository
		mirror      history.Mirror
	)
	if db != nil {
		catalogRepo = pg.NewCatalogRepo(db)
		mirror = pg.NewHistoryMirror(db)
	} else {
		catalogRepo = mem.NewCatalogRepo(nil)
	}

	medRepo := local.NewMedicineRepo(store, log)
	histRepo := local.NewHistoryRepo(store, log)

	catalogSvc := catalog.NewService(catalogRepo, log)
	histSvc := history.NewService(histRepo, mirror, log)

	notifier := opts.Notifier
	if notifier == nil {
		// El prompt tomar/posponer/cancelar lo muestra la capa de UI cuando
		// el dispositivo dispara; acá solo queda constancia del disparo.
		notifier = timer.New(func(p notify.FiredPayload) {
			log.Info("alarm fired", map[string]any{
				"alarm_id":    p.AlarmID,
				"medicine_id": p.MedicineID,
				"instant":     p.Instant.Format(time.RFC3339),
			})
		}, log)
	}

	sched := alarms.NewScheduler(notifier, log)
	medSvc := medicine.NewService(medRepo, sched, histSvc, catalogSvc, log)

	searchLimit := middleware.NewRateLimit(envInt("SEARCH_RATE_LIMIT", 60))

	medicine.RegisterRoutes(r, medSvc)
	catalog.RegisterRoutes(r, catalogSvc, searchLimit.Handler)
	history.RegisterRoutes(r, histSvc)

	r.Get("/swagger/*", httpSwagger.Handler())

	return r
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
