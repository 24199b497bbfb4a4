package documents

import (
	"context"
	"strings"
	"testing"

	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
)

func TestExtractReturnsStubResult(t *testing.T) {
	svc := NewService(nil)

	result, err := svc.Extract(context.Background(), "cedula.jpg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !result.Stub {
		t.Fatal("expected stub flag to be set")
	}
	if result.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", result.Confidence)
	}
}

func TestExtractRejectsEmptyBody(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.Extract(context.Background(), "cedula.jpg", strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty document")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.Extract(context.Background(), "cedula.jpg", nil); err == nil {
		t.Fatal("expected error for nil body")
	}
}
