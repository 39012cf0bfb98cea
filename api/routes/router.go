package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mediagallery-backend/api/controllers"
	"github.com/angelmondragon/mediagallery-backend/api/middleware"
	"github.com/angelmondragon/mediagallery-backend/api/responses"
	"github.com/angelmondragon/mediagallery-backend/internal/media"
	"github.com/angelmondragon/mediagallery-backend/pkg/config"
	"github.com/angelmondragon/mediagallery-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
	"github.com/angelmondragon/mediagallery-backend/pkg/metrics"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage"
)

// NewRouter wires middleware, health probes, the metrics endpoint, static
// uploads and the media API. A nil metricsHandler falls back to the default
// Prometheus registry.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store storage.Storage,
	mediaService media.Service,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	var storePinger db.Pinger
	if store != nil {
		storePinger = store
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "database", Pinger: dbP},
			controllers.ReadinessCheck{Name: "storage", Pinger: storePinger},
		))
	})

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	uploadsPrefix := "/" + strings.Trim(cfg.Storage.PublicPrefix, "/ ")
	if uploadsPrefix == "/" {
		uploadsPrefix = "/uploads"
	}
	r.Get(uploadsPrefix+"/*", controllers.ServeUpload(store, logg))

	r.Route("/api/media", func(r chi.Router) {
		r.Get("/", controllers.ListMedia(mediaService, logg))
		r.Post("/", controllers.CreateMedia(mediaService, cfg.Media.MaxUploadBytes(), logg))
		r.Post("/link", controllers.CreateMediaLink(mediaService, logg))

		r.Get("/galleries", controllers.ListGalleries(mediaService, logg))
		r.Get("/galleries/overview", controllers.GalleryOverview(mediaService, logg))

		r.Route("/gallery/{galleryName}", func(r chi.Router) {
			r.Get("/", controllers.ListGalleryMedia(mediaService, logg))
			r.Put("/", controllers.RenameGallery(mediaService, logg))
			r.Delete("/", controllers.ClearGallery(mediaService, logg))
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.GetMedia(mediaService, logg))
			r.Put("/", controllers.UpdateMedia(mediaService, logg))
			r.Delete("/", controllers.DeleteMedia(mediaService, logg))
			r.Put("/gallery", controllers.MoveMediaToGallery(mediaService, logg))
		})
	})

	return r
}
