package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/mediagallery-backend/api/responses"
	"github.com/angelmondragon/mediagallery-backend/pkg/config"
	"github.com/angelmondragon/mediagallery-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/mediagallery-backend/pkg/errors"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck names one dependency probed by the readiness endpoint.
type ReadinessCheck struct {
	Name   string
	Pinger db.Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MediaGallery-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and answers 503 listing the failures.
// Production hides the underlying error text.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MediaGallery-Env", cfg.App.Env)

		failures := map[string]string{}
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			err := check.Pinger.Ping(ctx)
			cancel()
			if err != nil {
				failures[check.Name] = err.Error()
				if cfg.App.IsProd() {
					failures[check.Name] = "unavailable"
				}
			}
		}

		if len(failures) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready").WithDetails(failures))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
