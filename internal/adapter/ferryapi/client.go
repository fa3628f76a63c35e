// Package ferryapi fetches disruption and route details for a ferry service.
package ferryapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/observability"
)

// Client calls the service detail endpoint, GET {baseURL}/services/{id}.
// Each call makes exactly one request; failures are returned to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a ferry API client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchDisruption returns the current disruption details and route metadata
// for a service. A response without a status yields domain.StatusUnknown.
func (c *Client) FetchDisruption(ctx context.Context, serviceID int) (domain.DisruptionDetails, domain.RouteDetails, error) {
	svc, err := c.fetch(ctx, c.baseURL+"/services/"+strconv.Itoa(serviceID))
	if err != nil {
		c.metrics.DisruptionRequests.WithLabelValues("error").Inc()
		return domain.DisruptionDetails{}, domain.RouteDetails{}, err
	}

	c.metrics.DisruptionRequests.WithLabelValues("success").Inc()
	details, route := svc.toDomain()
	c.logger.Debug("disruption fetched", "service_id", serviceID, "status", details.Status)
	return details, route, nil
}

func (c *Client) fetch(ctx context.Context, u string) (serviceResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return serviceResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues("ferry").Observe(time.Since(start).Seconds())
	if err != nil {
		return serviceResponse{}, fmt.Errorf("disruption request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return serviceResponse{}, fmt.Errorf("ferry API error: status %d: %s", resp.StatusCode, body)
	}

	var svc serviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&svc); err != nil {
		return serviceResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return svc, nil
}

// Ferry API response types.

type serviceResponse struct {
	ServiceID         int          `json:"service_id"`
	Status            *int         `json:"status"`
	DisruptionReason  string       `json:"disruption_reason"`
	DisruptionDetails string       `json:"disruption_details"`
	AdditionalInfo    string       `json:"additional_info"`
	LastUpdatedDate   string       `json:"last_updated_date"`
	RouteDetails      routeDetails `json:"route_details"`
}

type routeDetails struct {
	RouteID   int    `json:"route_id"`
	Route     string `json:"route"`
	Operator  string `json:"operator"`
	RouteType string `json:"route_type"`
}

func (r serviceResponse) toDomain() (domain.DisruptionDetails, domain.RouteDetails) {
	status := domain.StatusUnknown
	if r.Status != nil {
		status = domain.DisruptionStatus(*r.Status)
	}
	return domain.DisruptionDetails{
			Status:         status,
			Reason:         r.DisruptionReason,
			Details:        r.DisruptionDetails,
			AdditionalInfo: r.AdditionalInfo,
			LastUpdated:    r.LastUpdatedDate,
		}, domain.RouteDetails{
			RouteID:   r.RouteDetails.RouteID,
			Route:     r.RouteDetails.Route,
			Operator:  r.RouteDetails.Operator,
			RouteType: r.RouteDetails.RouteType,
		}
}
