package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/registropol/registropol-backend/api/middleware"
	"github.com/registropol/registropol-backend/internal/users"
	"github.com/registropol/registropol-backend/pkg/enums"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/pagination"
)

type stubUsersService struct {
	actorID   uint
	targetID  uint
	created   *users.CreateUserRequest
	updated   *users.UpdateUserRequest
	suspended *users.SuspendUserRequest
	deleted   bool
	list      *users.ListResult
	matches   []users.UserDTO
	searched  *users.SearchQuery
	user      *users.UserDTO
	err       error
}

func (s *stubUsersService) List(ctx context.Context, params pagination.Params) (*users.ListResult, error) {
	return s.list, s.err
}

func (s *stubUsersService) Search(ctx context.Context, query users.SearchQuery) ([]users.UserDTO, error) {
	s.searched = &query
	return s.matches, s.err
}

func (s *stubUsersService) Get(ctx context.Context, id uint) (*users.UserDTO, error) {
	s.targetID = id
	return s.user, s.err
}

func (s *stubUsersService) Create(ctx context.Context, actorID uint, req users.CreateUserRequest) (*users.UserDTO, error) {
	s.actorID = actorID
	s.created = &req
	return s.user, s.err
}

func (s *stubUsersService) Update(ctx context.Context, actorID uint, id uint, req users.UpdateUserRequest) (*users.UserDTO, error) {
	s.actorID = actorID
	s.targetID = id
	s.updated = &req
	return s.user, s.err
}

func (s *stubUsersService) Suspend(ctx context.Context, actorID uint, id uint, req users.SuspendUserRequest) (*users.UserDTO, error) {
	s.actorID = actorID
	s.targetID = id
	s.suspended = &req
	return s.user, s.err
}

func (s *stubUsersService) Reactivate(ctx context.Context, actorID uint, id uint) (*users.UserDTO, error) {
	s.actorID = actorID
	s.targetID = id
	return s.user, s.err
}

func (s *stubUsersService) Delete(ctx context.Context, actorID uint, id uint) error {
	s.actorID = actorID
	s.targetID = id
	s.deleted = true
	return s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminUsersCreate(t *testing.T) {
	svc := &stubUsersService{user: &users.UserDTO{ID: 10, Username: "officer2", Role: enums.RoleOfficer}}

	payload := `{"username":"officer2","password":"secret123","role":"officer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	resp := httptest.NewRecorder()

	AdminUsersCreate(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", resp.Code, resp.Body.String())
	}
	if svc.actorID != 1 {
		t.Fatalf("expected actor 1 got %d", svc.actorID)
	}
	if svc.created == nil || svc.created.Username != "officer2" {
		t.Fatalf("expected create request forwarded, got %+v", svc.created)
	}
}

func TestAdminUsersCreateInvalidPayload(t *testing.T) {
	payload := `{"username":"x","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	AdminUsersCreate(&stubUsersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminUsersListUsesSearchParam(t *testing.T) {
	svc := &stubUsersService{matches: []users.UserDTO{{ID: 2, Username: "officer1"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?search=officer&status=active", nil)
	resp := httptest.NewRecorder()

	AdminUsersList(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.searched == nil || svc.searched.Term != "officer" || svc.searched.Status != "active" {
		t.Fatalf("expected search filters forwarded, got %+v", svc.searched)
	}

	var envelope struct {
		Data users.ListResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Users) != 1 || envelope.Data.Users[0].Username != "officer1" {
		t.Fatalf("expected filtered users, got %+v", envelope.Data.Users)
	}
}

func TestAdminUsersUpdateRejectsPassword(t *testing.T) {
	payload := `{"password":"newpass-123"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/users/5", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "5")
	resp := httptest.NewRecorder()

	AdminUsersUpdate(&stubUsersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminUsersSuspendForwardsPayload(t *testing.T) {
	svc := &stubUsersService{user: &users.UserDTO{ID: 5, Status: enums.UserStatusSuspended}}

	until := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	payload, _ := json.Marshal(users.SuspendUserRequest{Until: until, Reason: "conduct review"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/5/suspend", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "5")
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	resp := httptest.NewRecorder()

	AdminUsersSuspend(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	if svc.targetID != 5 {
		t.Fatalf("expected target 5 got %d", svc.targetID)
	}
	if svc.suspended == nil || svc.suspended.Reason != "conduct review" || !svc.suspended.Until.Equal(until) {
		t.Fatalf("expected suspend payload forwarded, got %+v", svc.suspended)
	}
}

func TestAdminUsersInvalidIDParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/abc", nil)
	req = withURLParam(req, "id", "abc")
	resp := httptest.NewRecorder()

	AdminUsersDelete(&stubUsersService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminUsersDelete(t *testing.T) {
	svc := &stubUsersService{}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/7", nil)
	req = withURLParam(req, "id", "7")
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	resp := httptest.NewRecorder()

	AdminUsersDelete(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.deleted || svc.targetID != 7 || svc.actorID != 1 {
		t.Fatalf("expected delete of 7 by actor 1, got %+v", svc)
	}
}

func TestAdminUsersSelfActionPassesThrough(t *testing.T) {
	svc := &stubUsersService{err: pkgerrors.New(pkgerrors.CodeSelfAction, "administrators cannot suspend their own account")}

	payload, _ := json.Marshal(users.SuspendUserRequest{Until: time.Now().Add(24 * time.Hour), Reason: "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/1/suspend", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "id", "1")
	resp := httptest.NewRecorder()

	AdminUsersSuspend(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
