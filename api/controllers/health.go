package controllers

import (
	"context"
	"net/http"

	"github.com/batiserv/batiserv-backend/api/responses"
	"github.com/batiserv/batiserv-backend/pkg/config"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Batiserv-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and reports per-component status.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache, store pinger) http.HandlerFunc {
	deps := []struct {
		name string
		ping pinger
	}{
		{"database", db},
		{"redis", cache},
		{"storage", store},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Batiserv-Env", cfg.App.Env)

		status := map[string]string{}
		healthy := true
		for _, dep := range deps {
			if dep.ping == nil {
				continue
			}
			if err := dep.ping.Ping(r.Context()); err != nil {
				status[dep.name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(r.Context(), "healthcheck."+dep.name, err)
				}
				continue
			}
			status[dep.name] = "ok"
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(status)
			responses.WriteError(r.Context(), nil, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "components": status})
	}
}
