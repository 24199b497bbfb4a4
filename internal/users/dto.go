package users

import (
	"time"

	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID              uint             `json:"id"`
	Username        string           `json:"username"`
	FirstName       *string          `json:"first_name,omitempty"`
	LastName        *string          `json:"last_name,omitempty"`
	Email           *string          `json:"email,omitempty"`
	Role            enums.Role       `json:"role"`
	Status          enums.UserStatus `json:"status"`
	SuspendedUntil  *time.Time       `json:"suspended_until,omitempty"`
	SuspendedReason *string          `json:"suspended_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CreateUserRequest holds the payload accepted by the create endpoint.
// Role defaults to officer when omitted.
type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=64"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Role      string  `json:"role,omitempty"`
}

// UpdateUserRequest carries partial updates; nil fields are untouched.
// Credentials never travel through this path.
type UpdateUserRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Role      *string `json:"role,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// SuspendUserRequest requires both an end date and a reason.
type SuspendUserRequest struct {
	Until  time.Time `json:"until" validate:"required"`
	Reason string    `json:"reason" validate:"required"`
}

// SearchQuery narrows the directory search. Term matches username and
// name columns as a case-insensitive substring; Role and Status filter
// exactly when set.
type SearchQuery struct {
	Term   string
	Role   string
	Status string
}

// Empty reports whether no filter was supplied.
func (q SearchQuery) Empty() bool {
	return q.Term == "" && q.Role == "" && q.Status == ""
}

// ListResult is a cursor page of users.
type ListResult struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:              u.ID,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		Status:          u.Status,
		SuspendedUntil:  u.SuspendedUntil,
		SuspendedReason: u.SuspendedReason,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func fromModels(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *FromModel(&users[i]))
	}
	return out
}
