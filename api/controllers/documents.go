package controllers

import (
	"errors"
	"net/http"

	"github.com/registropol/registropol-backend/api/responses"
	"github.com/registropol/registropol-backend/internal/documents"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/logger"
)

// DocumentsExtract accepts an identity document image and returns the
// extraction result from the recognition engine.
func DocumentsExtract(svc *documents.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "documents service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("document")
		if errors.Is(err, http.ErrMissingFile) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "document file is required"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file"))
			return
		}
		defer file.Close()

		if maxUploadBytes > 0 && header.Size > maxUploadBytes {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file exceeds size limit").
				WithDetails(map[string]any{"max_bytes": maxUploadBytes}))
			return
		}

		result, err := svc.Extract(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
