package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/primecut/brokerage/pkg/logger"
)

// HealthCheckHandler serves liveness and readiness probes.
//
//   - Liveness: with no dependency functions the handler returns 200 "ALIVE".
//   - Readiness: each supplied function is executed; all passing returns
//     200 "READY", any failure returns 500 "NOT_READY".
//
// These endpoints must succeed on an empty, freshly migrated database, so
// they sit on the tenant middleware's skip list and read no tenant state.
func HealthCheckHandler(log *slog.Logger, funcs ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if len(funcs) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		for _, f := range funcs {
			if err := f(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
