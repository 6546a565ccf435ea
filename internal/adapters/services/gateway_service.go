package services

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/architeacher/storefront-gateway/internal/config"
	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/internal/ports"
	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
)

// GatewayService resolves requests against the route table and forwards
// them through the route's circuit breaker. It also reports the gateway's
// health from the breaker states.
type GatewayService struct {
	routes     *model.RouteTable
	breakers   ports.CircuitBreakers
	invoker    ports.UpstreamInvoker
	apiVersion string
	startedAt  time.Time
	probes     map[string]ports.DependencyProbe
	now        func() time.Time
}

type GatewayOption func(*GatewayService)

// WithDependencyProbe adds a backing service to the readiness checks.
func WithDependencyProbe(name string, probe ports.DependencyProbe) GatewayOption {
	return func(s *GatewayService) {
		s.probes[name] = probe
	}
}

func WithAPIVersion(version string) GatewayOption {
	return func(s *GatewayService) {
		s.apiVersion = version
	}
}

var (
	_ ports.Gateway       = (*GatewayService)(nil)
	_ ports.HealthChecker = (*GatewayService)(nil)
)

func NewGatewayService(
	routes *model.RouteTable,
	breakers ports.CircuitBreakers,
	invoker ports.UpstreamInvoker,
	opts ...GatewayOption,
) *GatewayService {
	svc := &GatewayService{
		routes:     routes,
		breakers:   breakers,
		invoker:    invoker,
		apiVersion: "v1",
		startedAt:  time.Now().UTC(),
		probes:     make(map[string]ports.DependencyProbe),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

func (s *GatewayService) Resolve(method, path string) (model.Route, error) {
	route, ok := s.routes.Match(method, path)
	if !ok {
		return model.Route{}, fmt.Errorf("%w: %s %s", model.ErrRouteNotFound, method, path)
	}

	return route, nil
}

func (s *GatewayService) Routes() []model.Route {
	return s.routes.Routes()
}

// Forward runs exactly one upstream call through the route's breaker. A
// rejected call never reaches the invoker and records nothing.
func (s *GatewayService) Forward(ctx context.Context, route model.Route, req model.UpstreamRequest) (*model.UpstreamResponse, error) {
	resp, err := s.breakers.Execute(route.Breaker, func() (*model.UpstreamResponse, error) {
		resp, err := s.invoker.Forward(ctx, req)
		if err != nil {
			return nil, err
		}

		if resp.Outcome() == model.OutcomeFailure {
			return resp, &model.UpstreamStatusError{Route: route.Name, StatusCode: resp.StatusCode}
		}

		return resp, nil
	})

	return mapForwardError(route, resp, err, s.breakerState(route.Breaker))
}

func (s *GatewayService) breakerState(name string) circuitbreaker.State {
	for _, snapshot := range s.breakers.Snapshots() {
		if snapshot.Name == name {
			return snapshot.State
		}
	}

	return circuitbreaker.StateOpen
}

// Liveness reports the process as up. Upstream outages never make the
// gateway itself unhealthy.
func (s *GatewayService) Liveness(_ context.Context) (*model.LivenessReport, error) {
	return &model.LivenessReport{
		Status:    model.HealthStatusOK,
		Timestamp: s.now().UTC(),
		Version:   config.ServiceVersion,
	}, nil
}

func (s *GatewayService) Readiness(ctx context.Context) (*model.ReadinessReport, error) {
	checks := s.dependencyChecks(ctx)

	return &model.ReadinessReport{
		Status:    model.AggregateStatus(checks),
		Timestamp: s.now().UTC(),
		Version:   config.ServiceVersion,
		Checks:    checks,
	}, nil
}

func (s *GatewayService) Health(ctx context.Context) (*model.HealthReport, error) {
	checks := s.dependencyChecks(ctx)
	now := s.now().UTC()
	uptime := now.Sub(s.startedAt)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return &model.HealthReport{
		Status:    model.AggregateStatus(checks),
		Timestamp: now,
		Version: model.VersionInfo{
			API:   s.apiVersion,
			Build: config.CommitSHA,
			Go:    runtime.Version(),
		},
		Uptime: model.UptimeInfo{
			StartedAt:       s.startedAt,
			Duration:        uptime.Truncate(time.Second).String(),
			DurationSeconds: uint64(uptime.Seconds()),
		},
		Checks: checks,
		System: model.SystemInfo{
			Memory: model.MemoryInfo{
				AllocMB:      bytesToMB(mem.Alloc),
				TotalAllocMB: bytesToMB(mem.TotalAlloc),
				SysMB:        bytesToMB(mem.Sys),
				GCCycles:     mem.NumGC,
			},
			Goroutines: uint(runtime.NumGoroutine()),
			CPUCores:   uint(runtime.NumCPU()),
		},
	}, nil
}

func (s *GatewayService) dependencyChecks(ctx context.Context) map[string]model.DependencyCheck {
	checks := make(map[string]model.DependencyCheck)
	now := s.now().UTC()

	for _, snapshot := range s.breakers.Snapshots() {
		check := model.DependencyCheck{
			Kind:        "circuit_breaker",
			Status:      model.BreakerDependencyStatus(snapshot.State.String()),
			Message:     snapshot.State.String(),
			LastChecked: now,
		}

		if snapshot.OpenedAt != nil && snapshot.State == circuitbreaker.StateOpen {
			check.Error = fmt.Sprintf("open since %s", snapshot.OpenedAt.UTC().Format(time.RFC3339))
		}

		checks[snapshot.Name] = check
	}

	for name, probe := range s.probes {
		start := time.Now()
		healthy := probe.IsHealthy(ctx)

		check := model.DependencyCheck{
			Kind:        "cache",
			Status:      model.DependencyStatusUp,
			Message:     "ok",
			LatencyMs:   uint64(time.Since(start).Milliseconds()),
			LastChecked: now,
		}

		if !healthy {
			check.Status = model.DependencyStatusDown
			check.Message = "unreachable"
		}

		checks[name] = check
	}

	return checks
}

func bytesToMB(b uint64) float64 {
	return float64(b) / 1024 / 1024
}
