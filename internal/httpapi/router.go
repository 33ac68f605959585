// Package httpapi assembles the service's HTTP surface.
package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"reelforge/internal/httpapi/handlers"
	"reelforge/internal/httpkit"
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/pkg/middleware"
	"reelforge/internal/ports"
)

type Deps struct {
	Store    jobstore.Store
	SP       ports.StorageProvider
	Pipeline handlers.Dispatcher
	Encoder  handlers.EncoderCheck
	Log      *logger.Logger

	MaxBundleBytes int64
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:8081",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		Store:          d.Store,
		SP:             d.SP,
		Pipeline:       d.Pipeline,
		Encoder:        d.Encoder,
		Log:            log,
		MaxBundleBytes: d.MaxBundleBytes,
	})

	r.Get("/health", h.Health)

	r.Post("/renders", h.PostRender)
	r.Get("/renders/{jobId}", h.GetRender)
	r.Get("/renders/{jobId}/video", h.GetRenderVideo)

	return r
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
