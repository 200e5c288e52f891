package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/inquiro/pkg/alert"
)

// BreakerSettings configures the circuit breaker around a provider.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// CircuitBreakerProvider wraps a Provider with circuit breaking. When the
// provider keeps failing, calls fail fast instead of piling onto a broken
// upstream; the breaker does not retry — recovery stays with the caller.
type CircuitBreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
	alerter  alert.Alerter
}

// NewCircuitBreakerProvider wraps provider with a breaker. The alerter is
// notified when the breaker trips open; pass nil to skip alerting.
func NewCircuitBreakerProvider(provider Provider, settings BreakerSettings, alerter alert.Alerter) *CircuitBreakerProvider {
	if settings.Name == "" {
		settings.Name = "search-provider"
	}
	if settings.ReadyToTripRatio <= 0 {
		settings.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= settings.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen && alerter != nil {
				msg := fmt.Sprintf("Circuit breaker %q changed from %s to %s: too many provider failures.", name, from, to)
				_ = alerter.Alert(fmt.Sprintf("URGENT: circuit breaker tripped - %s", name), msg)
			}
		},
	}

	return &CircuitBreakerProvider{
		provider: provider,
		cb:       gobreaker.NewCircuitBreaker(st),
		alerter:  alerter,
	}
}

// Search implements Provider.
func (c *CircuitBreakerProvider) Search(ctx context.Context, query string, opts Options) (json.RawMessage, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.provider.Search(ctx, query, opts)
	})
	if err != nil {
		return nil, err
	}
	return resp.(json.RawMessage), nil
}
