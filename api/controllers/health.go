package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/toolyhq/tooly-storefront/api/responses"
	"github.com/toolyhq/tooly-storefront/pkg/config"
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/redis"
)

const readinessTimeout = 3 * time.Second

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tooly-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when redis and the commerce backend answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisP redis.Pinger, commerceP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tooly-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		ready := true

		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}
		if commerceP != nil {
			if err := commerceP.Ping(ctx); err != nil {
				checks["commerce"] = err.Error()
				ready = false
			} else {
				checks["commerce"] = "ok"
			}
		}

		if !ready {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
