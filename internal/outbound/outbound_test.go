package outbound

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/observability"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

func TestClassifierClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classify", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "My ration card was denied", body["complaint_text"])

		_, _ = io.WriteString(w, `{
			"category": "Housing",
			"category_confidence": 0.82,
			"alternative_categories": [{"category": "Food", "confidence": 0.1}],
			"recommended_department": "Housing",
			"keywords_found": ["ration"],
			"explanation": {"category": "matched ration", "department": "housing desk"}
		}`)
	}))
	defer srv.Close()

	client := NewClassifierClient(config.ClassifierConfig{BaseURL: srv.URL + "/", TimeoutSeconds: 2}, observability.NewMetrics())
	got, err := client.Classify(context.Background(), "My ration card was denied")
	require.NoError(t, err)
	assert.Equal(t, "Housing", got.Category)
	assert.Equal(t, "Housing", got.RecommendedDepartment)
	assert.InDelta(t, 0.82, got.CategoryConfidence, 1e-9)
	require.Len(t, got.AlternativeCategories, 1)
	assert.Equal(t, "Food", got.AlternativeCategories[0].Category)
	assert.Equal(t, []string{"ration"}, got.KeywordsFound)
	assert.Equal(t, "housing desk", got.Explanation.Department)
}

func TestClassifierUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClassifierClient(config.ClassifierConfig{BaseURL: srv.URL}, nil)
	_, err := client.Classify(context.Background(), "text")
	require.Error(t, err)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
	assert.Equal(t, "classifier", de.Details["service"])
}

func TestClassifierTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := NewClassifierClient(config.ClassifierConfig{BaseURL: srv.URL}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Classify(ctx, "text")
	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_FAILED", apperrors.ToDomainError(err).Code)
}

func TestDocumentReaderExtractState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract_aadhaar", r.URL.Path)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "card.png", header.Filename)
		content, _ := io.ReadAll(file)
		assert.Equal(t, "image-bytes", string(content))

		_, _ = io.WriteString(w, `{"State": "Bihar", "Pincode": "800001"}`)
	}))
	defer srv.Close()

	reader := NewDocumentReaderClient(config.DocumentReaderConfig{BaseURL: srv.URL}, nil)
	state, err := reader.ExtractState(context.Background(), "card.png", []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "Bihar", state)
}

func TestDocumentReaderNoPattern(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"Error": "No pattern found"}`)
	}))
	defer srv.Close()

	reader := NewDocumentReaderClient(config.DocumentReaderConfig{BaseURL: srv.URL}, nil)
	_, err := reader.ExtractState(context.Background(), "card.png", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)
}

func TestGeocoderReverseState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "19.076", r.URL.Query().Get("lat"))
		assert.Equal(t, "72.8777", r.URL.Query().Get("lon"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "grievance-test", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, `{"address": {"state": "Maharashtra"}}`)
	}))
	defer srv.Close()

	geo := NewGeocoderClient(config.GeocoderConfig{BaseURL: srv.URL, UserAgent: "grievance-test"}, nil)
	state, err := geo.ReverseState(context.Background(), 19.076, 72.8777)
	require.NoError(t, err)
	assert.Equal(t, "Maharashtra", state)
}

func TestGeocoderMissingState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"address": {}}`)
	}))
	defer srv.Close()

	geo := NewGeocoderClient(config.GeocoderConfig{BaseURL: srv.URL}, nil)
	_, err := geo.ReverseState(context.Background(), 0, 0)
	assert.Error(t, err)
}
