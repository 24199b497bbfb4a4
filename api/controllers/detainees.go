package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/registropol/registropol-backend/api/middleware"
	"github.com/registropol/registropol-backend/api/responses"
	"github.com/registropol/registropol-backend/api/validators"
	"github.com/registropol/registropol-backend/internal/detainees"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/logger"
	"github.com/registropol/registropol-backend/pkg/pagination"
)

const uploadPrefix = "detainees"

// AttachmentStore persists uploaded files and returns their public URL.
type AttachmentStore interface {
	Save(ctx context.Context, prefix, filename string, body io.Reader) (string, error)
}

// DetaineesRegister handles the multipart registration form. Each
// attachment is size-capped before it reaches the blob store.
func DetaineesRegister(svc detainees.Service, store AttachmentStore, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "detainees service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		req := detainees.RegisterRequest{
			FullName:     r.FormValue("full_name"),
			Cedula:       r.FormValue("cedula"),
			BirthDate:    r.FormValue("birth_date"),
			State:        r.FormValue("state"),
			Municipality: r.FormValue("municipality"),
			Parish:       r.FormValue("parish"),
			Address:      r.FormValue("address"),
		}
		if v := strings.TrimSpace(r.FormValue("registro")); v != "" {
			req.Registro = &v
		}
		if v := strings.TrimSpace(r.FormValue("phone")); v != "" {
			req.Phone = &v
		}
		if err := validators.ValidateStruct(&req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photoURL, err := saveUpload(r, store, "photo", maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req.PhotoURL = photoURL

		docURL, err := saveUpload(r, store, "id_document", maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req.IDDocumentURL = docURL

		actorID := middleware.UserIDFromContext(r.Context())
		result, err := svc.Register(r.Context(), actorID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// saveUpload stores a single optional form file and returns its URL,
// or nil when the field was not provided.
func saveUpload(r *http.Request, store AttachmentStore, field string, maxBytes int64) (*string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file").
			WithDetails(map[string]any{"field": field})
	}
	defer file.Close()

	if maxBytes > 0 && header.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file exceeds size limit").
			WithDetails(map[string]any{"field": field, "max_bytes": maxBytes})
	}

	url, err := store.Save(r.Context(), uploadPrefix, header.Filename, file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing uploaded file")
	}
	return &url, nil
}

// DetaineesSearch handles the simple cedula lookup.
func DetaineesSearch(svc detainees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "detainees service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		result, err := svc.SearchSimple(r.Context(), actorID, r.URL.Query().Get("cedula"), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type advancedSearchBody struct {
	detainees.SearchCriteria
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// DetaineesSearchAdvanced handles the multi-criteria search.
func DetaineesSearchAdvanced(svc detainees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "detainees service unavailable"))
			return
		}

		var body advancedSearchBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		result, err := svc.SearchAdvanced(r.Context(), actorID, body.SearchCriteria, pagination.Params{
			Limit:  body.Limit,
			Cursor: body.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
