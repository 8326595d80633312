package outbound

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/observability"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// Geocoder resolves coordinates to the state they fall in.
type Geocoder interface {
	ReverseState(ctx context.Context, lat, lon float64) (string, error)
}

// GeocoderClient talks to a Nominatim-compatible /reverse endpoint.
type GeocoderClient struct {
	httpService
	userAgent string
}

// NewGeocoderClient builds the client.
func NewGeocoderClient(cfg config.GeocoderConfig, metrics *observability.Metrics) *GeocoderClient {
	return &GeocoderClient{
		httpService: newHTTPService("geocoder", cfg.BaseURL, cfg.Timeout(), metrics),
		userAgent:   cfg.UserAgent,
	}
}

type reverseResponse struct {
	Address struct {
		State string `json:"state"`
	} `json:"address"`
}

// ReverseState returns address.state for the coordinates.
func (c *GeocoderClient) ReverseState(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("format", "json")

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var resp reverseResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	state := strings.TrimSpace(resp.Address.State)
	if state == "" {
		return "", apperrors.NewUpstreamError(c.name, errors.New("no state for coordinates"))
	}
	return state, nil
}
