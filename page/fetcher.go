package page

import (
	"context"
	"fmt"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"log"
	"net/http"
	"pg_service/domain"
	"strings"
	"time"
)

// APIListingSource is the production data source, it talks to the listing
// lookup endpoint over HTTP behind a circuit breaker.
type APIListingSource struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
}

func NewAPIListingSource(baseURL string, client *http.Client) *APIListingSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &APIListingSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		cb:      CircuitBreaker("pgDetails"),
	}
}

func (source *APIListingSource) FetchListing(ctx context.Context, id string) (*domain.Listing, error) {
	result, breakerErr := source.cb.Execute(func() (interface{}, error) {
		detailsEndpoint := fmt.Sprintf("%s/api/pg/%s", source.baseURL, id)
		detailsRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsEndpoint, nil)
		if err != nil {
			return nil, err
		}
		detailsRequest.Header.Set("Cache-Control", "no-cache")
		detailsRequest.Header.Set("Pragma", "no-cache")
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(detailsRequest.Header))

		detailsResponse, err := source.client.Do(detailsRequest)
		if err != nil {
			return nil, fmt.Errorf("Error fetching PG details: %v", err)
		}
		defer detailsResponse.Body.Close()

		if detailsResponse.StatusCode != http.StatusOK {
			return nil, domain.ErrResp{URL: detailsEndpoint, StatusCode: detailsResponse.StatusCode}
		}

		listing := &domain.Listing{}
		if err := listing.FromJSON(detailsResponse.Body); err != nil {
			return nil, fmt.Errorf("Error decoding PG details: %v", err)
		}
		return listing, nil
	})
	if breakerErr != nil {
		return nil, breakerErr
	}

	listing, ok := result.(*domain.Listing)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return listing, nil
}

func CircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Printf("Circuit Breaker '%s' changed from '%s' to '%s'\n", name, from, to)
			},

			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				errResp, ok := err.(domain.ErrResp)
				return ok && errResp.StatusCode >= 400 && errResp.StatusCode < 500
			},
		},
	)
}
