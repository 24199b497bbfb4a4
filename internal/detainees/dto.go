package detainees

import (
	"time"

	"github.com/registropol/registropol-backend/pkg/db/models"
)

// RegisterRequest carries the fields captured by the registration form.
// Attachment URLs are filled in by the controller after upload.
type RegisterRequest struct {
	FullName      string  `json:"full_name" validate:"required"`
	Cedula        string  `json:"cedula" validate:"required"`
	BirthDate     string  `json:"birth_date" validate:"required"`
	State         string  `json:"state" validate:"required"`
	Municipality  string  `json:"municipality" validate:"required"`
	Parish        string  `json:"parish" validate:"required"`
	Address       string  `json:"address" validate:"required"`
	Registro      *string `json:"registro,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	PhotoURL      *string `json:"photo_url,omitempty"`
	IDDocumentURL *string `json:"id_document_url,omitempty"`
}

// SearchCriteria holds the advanced-search filters. Name matches are
// case-insensitive substrings; the location filters are exact.
type SearchCriteria struct {
	Cedula       string `json:"cedula,omitempty"`
	Name         string `json:"name,omitempty"`
	State        string `json:"state,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Parish       string `json:"parish,omitempty"`
}

// Empty reports whether no filter was supplied.
func (c SearchCriteria) Empty() bool {
	return c.Cedula == "" && c.Name == "" && c.State == "" && c.Municipality == "" && c.Parish == ""
}

// DetaineeDTO is the transport shape of a registered record.
type DetaineeDTO struct {
	ID            uint      `json:"id"`
	FullName      string    `json:"full_name"`
	Cedula        string    `json:"cedula"`
	BirthDate     string    `json:"birth_date"`
	State         string    `json:"state"`
	Municipality  string    `json:"municipality"`
	Parish        string    `json:"parish"`
	Address       string    `json:"address"`
	Registro      *string   `json:"registro,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	PhotoURL      *string   `json:"photo_url,omitempty"`
	IDDocumentURL *string   `json:"id_document_url,omitempty"`
	RegisteredBy  uint      `json:"registered_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchResult is a cursor page of detainee records.
type SearchResult struct {
	Detainees  []DetaineeDTO `json:"detainees"`
	Total      int           `json:"total"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

const birthDateLayout = "2006-01-02"

func FromModel(d *models.Detainee) *DetaineeDTO {
	if d == nil {
		return nil
	}
	return &DetaineeDTO{
		ID:            d.ID,
		FullName:      d.FullName,
		Cedula:        d.Cedula,
		BirthDate:     d.BirthDate.Format(birthDateLayout),
		State:         d.State,
		Municipality:  d.Municipality,
		Parish:        d.Parish,
		Address:       d.Address,
		Registro:      d.Registro,
		Phone:         d.Phone,
		PhotoURL:      d.PhotoURL,
		IDDocumentURL: d.IDDocumentURL,
		RegisteredBy:  d.RegisteredBy,
		CreatedAt:     d.CreatedAt,
	}
}

func fromModels(rows []models.Detainee) []DetaineeDTO {
	out := make([]DetaineeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
