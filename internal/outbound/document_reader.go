package outbound

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/observability"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// DocumentReader extracts the address state from an identity document.
type DocumentReader interface {
	ExtractState(ctx context.Context, filename string, content []byte) (string, error)
}

// DocumentReaderClient posts uploads to the OCR service's /extract_aadhaar endpoint.
type DocumentReaderClient struct {
	httpService
}

// NewDocumentReaderClient builds the client.
func NewDocumentReaderClient(cfg config.DocumentReaderConfig, metrics *observability.Metrics) *DocumentReaderClient {
	return &DocumentReaderClient{httpService: newHTTPService("document_reader", cfg.BaseURL, cfg.Timeout(), metrics)}
}

type extractResponse struct {
	State   string `json:"State"`
	Pincode string `json:"Pincode"`
	Error   string `json:"Error"`
}

// ExtractState uploads the document and returns the state printed on it.
func (c *DocumentReaderClient) ExtractState(ctx context.Context, filename string, content []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/extract_aadhaar", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp extractResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", apperrors.NewValidationError("could not read identity document", map[string]any{"file": resp.Error})
	}
	state := strings.TrimSpace(resp.State)
	if state == "" {
		return "", apperrors.NewUpstreamError(c.name, errors.New("no state in response"))
	}
	return state, nil
}
