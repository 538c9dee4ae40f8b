package router

import (
	"database/sql"
	"net/http"
	"os"

	notifyadapter "pet-adoption-platform/internal/adapters/notify"
	mem "pet-adoption-platform/internal/adapters/storage/memory"
	pg "pet-adoption-platform/internal/adapters/storage/postgres"
	"pet-adoption-platform/internal/domain/applications"
	"pet-adoption-platform/internal/domain/favorites"
	"pet-adoption-platform/internal/domain/pets"
	"pet-adoption-platform/internal/middleware"
	"pet-adoption-platform/internal/platform/logger"
	"pet-adoption-platform/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: logger para el motor de revisión y el notifier.
	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	var (
		petRepo pets.Repository
		appRepo applications.Repository
		favRepo favorites.Repository
	)

	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{Level: logger.Info, App: "pet-adoption-platform"})
	}

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err != nil {
				// Que el fallback a memoria quede registrado: un deploy mal
				// configurado no debe correr volátil en silencio.
				log.Error("postgres open failed, falling back to in-memory store", map[string]any{
					"error": err.Error(),
				})
			} else {
				db = opened
			}
		}
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		appRepo = pg.NewApplicationsRepo(db)
		favRepo = pg.NewFavoritesRepo(db)
	} else {
		memPets := mem.NewPetRepo()
		petRepo = memPets
		appRepo = mem.NewApplicationsRepo(memPets)
		favRepo = mem.NewFavoritesRepo()
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	appsSvc := applications.NewService(appRepo, notifyadapter.NewLogNotifier(log), log)
	favSvc := favorites.NewService(favRepo)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, appsSvc)
	applications.RegisterRoutes(r, appsSvc, petsSvc)
	favorites.RegisterRoutes(r, favSvc, petsSvc)

	return r
}
