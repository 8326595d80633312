// Package outbound wraps the external collaborators the service consults:
// the complaint classifier, the identity document reader and the reverse
// geocoder. Every call carries a timeout and fails with an upstream error.
package outbound

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spec-kit/grievance-service/internal/observability"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

const maxErrorBody = 512

// httpService is the plumbing shared by every client.
type httpService struct {
	name       string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

func newHTTPService(name, baseURL string, timeout time.Duration, metrics *observability.Metrics) httpService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return httpService{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
	}
}

// do sends req and decodes a 2xx JSON body into out.
func (s httpService) do(ctx context.Context, req *http.Request, out any) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOutbound(s.name, err, time.Since(start))
		if err != nil {
			err = apperrors.NewUpstreamError(s.name, err)
		}
	}()

	resp, err := s.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
