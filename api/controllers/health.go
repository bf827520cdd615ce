package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/DTBbuilds/SmartDuka-sub000/api/responses"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// CacheTier reports which cache backend is serving reads.
type CacheTier interface {
	UsingFallback() bool
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SmartDuka-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady fails only when the database is unreachable. A cache running on
// the in-process tier is reported but still ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, db pinger, cacheTier CacheTier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SmartDuka-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if db == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := db.Ping(ctx); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable").WithDetails(map[string]any{"dependency": "database"}))
			return
		}

		tier := "redis"
		if cacheTier == nil || cacheTier.UsingFallback() {
			tier = "memory"
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "cache": tier})
	}
}
