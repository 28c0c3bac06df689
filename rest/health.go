// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"log/slog"
	"net/http"

	"github.com/z5labs/todo"
	"github.com/z5labs/todo/health"
)

const (
	livenessPath  = "/health/liveness"
	readinessPath = "/health/readiness"
)

// Readiness reports m at GET /health/readiness.
//
// See [Liveness, Readiness, and Startup Probes] for more details.
//
// [Liveness, Readiness, and Startup Probes]: https://kubernetes.io/docs/concepts/configuration/liveness-readiness-startup-probes/
func Readiness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.mux.Method(http.MethodGet, readinessPath, monitorHandler(readinessPath, m))
	})
}

// Liveness reports m at GET /health/liveness.
func Liveness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.mux.Method(http.MethodGet, livenessPath, monitorHandler(livenessPath, m))
	})
}

// monitorHandler responds 200 when m is healthy and 503 otherwise.
func monitorHandler(path string, m health.Monitor) http.Handler {
	log := todo.Logger("github.com/z5labs/todo/rest")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		healthy, err := m.Healthy(r.Context())
		if err != nil {
			log.WarnContext(r.Context(), "health check failed", slog.String("probe", path), slog.Any("error", err))
		}
		if !healthy || err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
