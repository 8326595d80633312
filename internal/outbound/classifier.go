package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/observability"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// Classifier maps complaint text to a category and department.
type Classifier interface {
	Classify(ctx context.Context, text string) (*domain.Classification, error)
}

// ClassifierClient calls the ML service's /classify endpoint.
type ClassifierClient struct {
	httpService
	limiter *rate.Limiter
}

// NewClassifierClient builds the client. A non-positive rate disables limiting.
func NewClassifierClient(cfg config.ClassifierConfig, metrics *observability.Metrics) *ClassifierClient {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &ClassifierClient{
		httpService: newHTTPService("classifier", cfg.BaseURL, cfg.Timeout(), metrics),
		limiter:     limiter,
	}
}

type classifyRequest struct {
	ComplaintText string `json:"complaint_text"`
}

type classifyResponse struct {
	Category              string                       `json:"category"`
	CategoryConfidence    float64                      `json:"category_confidence"`
	AlternativeCategories []domain.AlternativeCategory `json:"alternative_categories"`
	RecommendedDepartment string                       `json:"recommended_department"`
	KeywordsFound         []string                     `json:"keywords_found"`
	Explanation           domain.Explanation           `json:"explanation"`
}

// Classify posts the text and returns the classifier's verdict.
func (c *ClassifierClient) Classify(ctx context.Context, text string) (*domain.Classification, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewUpstreamError(c.name, err)
	}

	body, err := json.Marshal(classifyRequest{ComplaintText: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp classifyResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Category == "" {
		return nil, apperrors.NewUpstreamError(c.name, errors.New("empty category in response"))
	}
	return &domain.Classification{
		Category:              resp.Category,
		CategoryConfidence:    resp.CategoryConfidence,
		AlternativeCategories: resp.AlternativeCategories,
		RecommendedDepartment: resp.RecommendedDepartment,
		KeywordsFound:         resp.KeywordsFound,
		Explanation:           resp.Explanation,
	}, nil
}
