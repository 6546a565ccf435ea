package public

import (
	"net/http"
	"time"

	"github.com/architeacher/storefront-gateway/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/usecases"
	"github.com/architeacher/storefront-gateway/internal/usecases/queries"
)

type (
	dependencyCheck struct {
		Kind        string    `json:"kind"`
		Status      string    `json:"status"`
		LatencyMs   uint64    `json:"latencyMs"`
		Message     string    `json:"message,omitempty"`
		Error       string    `json:"error,omitempty"`
		LastChecked time.Time `json:"lastChecked"`
	}

	livenessResponse struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Version   string    `json:"version,omitempty"`
	}

	readinessResponse struct {
		Status    string                     `json:"status"`
		Timestamp time.Time                  `json:"timestamp"`
		Version   string                     `json:"version,omitempty"`
		Checks    map[string]dependencyCheck `json:"checks"`
	}

	healthResponse struct {
		Status    string                     `json:"status"`
		Timestamp time.Time                  `json:"timestamp"`
		Version   map[string]string          `json:"version"`
		Uptime    map[string]any             `json:"uptime"`
		Checks    map[string]dependencyCheck `json:"checks"`
		System    map[string]any             `json:"system"`
	}

	// ActuatorHandler serves the probe and breaker endpoints under /actuator.
	ActuatorHandler struct {
		app *usecases.WebApplication
	}
)

func NewActuatorHandler(app *usecases.WebApplication) *ActuatorHandler {
	return &ActuatorHandler{app: app}
}

func (h *ActuatorHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLiveness.Execute(r.Context(), queries.FetchLivenessQuery{})
	if err != nil {
		writeDown(w)

		return
	}

	shared.WriteJSON(w, http.StatusOK, livenessResponse{
		Status:    string(result.Status),
		Timestamp: result.Timestamp,
		Version:   result.Version,
	})
}

func (h *ActuatorHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadiness.Execute(r.Context(), queries.FetchReadinessQuery{})
	if err != nil {
		writeDown(w)

		return
	}

	shared.WriteJSON(w, statusCode(result.Status), readinessResponse{
		Status:    string(result.Status),
		Timestamp: result.Timestamp,
		Version:   result.Version,
		Checks:    toDependencyChecks(result.Checks),
	})
}

func (h *ActuatorHandler) Health(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchHealthReport.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		writeDown(w)

		return
	}

	shared.WriteJSON(w, statusCode(result.Status), healthResponse{
		Status:    string(result.Status),
		Timestamp: result.Timestamp,
		Version: map[string]string{
			"api":   result.Version.API,
			"build": result.Version.Build,
			"go":    result.Version.Go,
		},
		Uptime: map[string]any{
			"startedAt":       result.Uptime.StartedAt,
			"duration":        result.Uptime.Duration,
			"durationSeconds": result.Uptime.DurationSeconds,
		},
		Checks: toDependencyChecks(result.Checks),
		System: map[string]any{
			"goroutines": result.System.Goroutines,
			"cpuCores":   result.System.CPUCores,
			"memory": map[string]any{
				"allocMB":      result.System.Memory.AllocMB,
				"totalAllocMB": result.System.Memory.TotalAllocMB,
				"sysMB":        result.System.Memory.SysMB,
				"gcCycles":     result.System.Memory.GCCycles,
			},
		},
	})
}

func (h *ActuatorHandler) CircuitBreakers(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.app.Queries.FetchCircuitBreakers.Execute(r.Context(), queries.FetchCircuitBreakersQuery{})
	if err != nil {
		shared.WriteError(w, r, http.StatusInternalServerError, shared.CodeInternalError, "reading circuit breakers")

		return
	}

	shared.WriteJSON(w, http.StatusOK, shared.NewCircuitBreakersView(snapshots))
}

// statusCode keeps a degraded gateway in rotation since it still answers
// with fallbacks; only a gateway that is down is taken out.
func statusCode(status model.HealthStatus) int {
	if status == model.HealthStatusDown {
		return http.StatusServiceUnavailable
	}

	return http.StatusOK
}

func writeDown(w http.ResponseWriter) {
	shared.WriteJSON(w, http.StatusServiceUnavailable, livenessResponse{
		Status:    string(model.HealthStatusDown),
		Timestamp: time.Now().UTC(),
	})
}

func toDependencyChecks(checks map[string]model.DependencyCheck) map[string]dependencyCheck {
	out := make(map[string]dependencyCheck, len(checks))

	for name, check := range checks {
		out[name] = dependencyCheck{
			Kind:        check.Kind,
			Status:      string(check.Status),
			LatencyMs:   check.LatencyMs,
			Message:     check.Message,
			Error:       check.Error,
			LastChecked: check.LastChecked,
		}
	}

	return out
}
