package shared

import (
	"time"

	"github.com/architeacher/storefront-gateway/internal/domain/model"
	"github.com/architeacher/storefront-gateway/pkg/circuitbreaker"
)

type (
	CircuitBreakerView struct {
		Name                 string     `json:"name"`
		State                string     `json:"state"`
		FailureThreshold     uint       `json:"failureThreshold"`
		Cooldown             string     `json:"cooldown"`
		ConsecutiveFailures  uint32     `json:"consecutiveFailures"`
		ConsecutiveSuccesses uint32     `json:"consecutiveSuccesses"`
		Requests             uint32     `json:"requests"`
		TotalSuccesses       uint32     `json:"totalSuccesses"`
		TotalFailures        uint32     `json:"totalFailures"`
		OpenedAt             *time.Time `json:"openedAt,omitempty"`
	}

	CircuitBreakersView struct {
		CircuitBreakers []CircuitBreakerView `json:"circuitBreakers"`
	}

	RouteView struct {
		Name     string `json:"name"`
		Method   string `json:"method"`
		Path     string `json:"path"`
		Upstream string `json:"upstream"`
		Rewrite  string `json:"rewrite,omitempty"`
		Breaker  string `json:"circuitBreaker"`
	}

	RoutesView struct {
		Routes []RouteView `json:"routes"`
	}
)

func NewCircuitBreakersView(snapshots []circuitbreaker.Snapshot) CircuitBreakersView {
	views := make([]CircuitBreakerView, 0, len(snapshots))

	for _, snapshot := range snapshots {
		views = append(views, CircuitBreakerView{
			Name:                 snapshot.Name,
			State:                snapshot.State.String(),
			FailureThreshold:     snapshot.FailureThreshold,
			Cooldown:             snapshot.Cooldown.String(),
			ConsecutiveFailures:  snapshot.ConsecutiveFailures,
			ConsecutiveSuccesses: snapshot.ConsecutiveSuccesses,
			Requests:             snapshot.Requests,
			TotalSuccesses:       snapshot.TotalSuccesses,
			TotalFailures:        snapshot.TotalFailures,
			OpenedAt:             snapshot.OpenedAt,
		})
	}

	return CircuitBreakersView{CircuitBreakers: views}
}

func NewRoutesView(routes []model.Route) RoutesView {
	views := make([]RouteView, 0, len(routes))

	for _, route := range routes {
		views = append(views, RouteView{
			Name:     route.Name,
			Method:   route.Method,
			Path:     route.Pattern.String(),
			Upstream: route.Upstream,
			Rewrite:  route.Rewrite,
			Breaker:  route.Breaker,
		})
	}

	return RoutesView{Routes: views}
}
