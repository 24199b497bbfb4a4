// Package documents extracts registration fields from uploaded ID
// documents. The current extractor is a stub that returns a canned
// response; the API surface is stable so a real OCR engine can slot in.
package documents

import (
	"context"
	"fmt"
	"io"

	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/logger"
)

// Extraction is the field set read from a scanned cedula document.
type Extraction struct {
	FullName   string  `json:"full_name"`
	Cedula     string  `json:"cedula"`
	BirthDate  string  `json:"birth_date"`
	Confidence float64 `json:"confidence"`
	Stub       bool    `json:"stub"`
}

// Service runs document field extraction.
type Service struct {
	logg *logger.Logger
}

// NewService constructs the extraction service.
func NewService(logg *logger.Logger) *Service {
	return &Service{logg: logg}
}

// Extract reads the uploaded document and returns the recognized
// fields. The stub drains the stream to validate it but recognizes
// nothing, reporting zero confidence.
func (s *Service) Extract(ctx context.Context, filename string, body io.Reader) (*Extraction, error) {
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document body is required")
	}
	size, err := io.Copy(io.Discard, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read document")
	}
	if size == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document is empty")
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"filename": filename, "bytes": size})
		s.logg.Info(ctx, "ocr extraction requested, stub engine active")
	}

	return &Extraction{
		FullName:   "",
		Cedula:     "",
		BirthDate:  "",
		Confidence: 0,
		Stub:       true,
	}, nil
}

// Ping reports extractor availability. The stub is always available.
func (s *Service) Ping(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("documents service not initialized")
	}
	return nil
}
