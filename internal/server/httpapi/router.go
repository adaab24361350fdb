// Package httpapi exposes the account and audio file services over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/audiokeeper/internal/logging"
	"github.com/dmitrijs2005/audiokeeper/internal/server/auth"
	"github.com/dmitrijs2005/audiokeeper/internal/server/models"
	"github.com/dmitrijs2005/audiokeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// AccountService is implemented by *services.AccountService.
type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (models.PublicUser, error)
	Login(ctx context.Context, username, password string) (auth.Token, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Me(ctx context.Context, subject string) (models.PublicUser, error)
	UpdateMe(ctx context.Context, subject string, in services.UpdateInput) (models.PublicUser, error)
	DeleteMe(ctx context.Context, subject string) error
}

// AudioFileService is implemented by *services.AudioFileService.
type AudioFileService interface {
	Create(ctx context.Context, owner string, in services.AudioFileInput) (models.PublicAudioFile, error)
	List(ctx context.Context, owner string) ([]models.PublicAudioFile, error)
	Get(ctx context.Context, owner, id string) (models.PublicAudioFile, error)
	Update(ctx context.Context, owner, id string, in services.AudioFileInput) (models.PublicAudioFile, error)
	Delete(ctx context.Context, owner, id string) error
	UploadURL(ctx context.Context, owner, id string) (services.UploadTicket, error)
	DownloadURL(ctx context.Context, owner, id string) (string, error)
}

// Deps are the collaborators of the router. Ready, when set, backs /health.
type Deps struct {
	Accounts       AccountService
	AudioFiles     AudioFileService
	Logger         logging.Logger
	Ready          func(ctx context.Context) error
	AllowedOrigins []string
}

// NewRouter wires every route of the API.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	logger := d.Logger.With("module", "http")

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(tracing)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", healthHandler(d.Ready, logger))

	ah := &accountHandlers{accounts: d.Accounts, logger: logger}
	r.Post("/accounts", ah.register)
	r.Post("/token", ah.token)

	auth := requireAuth(d.Accounts, logger)

	r.Route("/accounts/me", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", ah.me)
		r.Patch("/", ah.update)
		r.Put("/", ah.update)
		r.Delete("/", ah.delete)
	})

	if d.AudioFiles != nil {
		fh := &audioFileHandlers{files: d.AudioFiles, logger: logger}
		r.Route("/audio_files", func(r chi.Router) {
			r.Use(auth)
			r.Post("/", fh.create)
			r.Get("/", fh.list)
			r.Get("/{id}", fh.get)
			r.Patch("/{id}", fh.update)
			r.Put("/{id}", fh.update)
			r.Delete("/{id}", fh.delete)
			r.Post("/{id}/upload-url", fh.uploadURL)
			r.Get("/{id}/download-url", fh.downloadURL)
		})
	}

	return r
}

func healthHandler(ready func(context.Context) error, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				logger.Warn(r.Context(), "readiness check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
