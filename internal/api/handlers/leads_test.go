package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadsapi/internal/core"
	"leadsapi/internal/types"
)

// mockLeadRepo implements LeadRepo with overridable function fields.
type mockLeadRepo struct {
	createFn  func(contactName, email, createdBy string) types.Lead
	getByIDFn func(id uuid.UUID) (types.Lead, bool)
	assignFn  func(id uuid.UUID, adviserID string) (types.Lead, bool)
}

func (m *mockLeadRepo) Create(contactName, email, createdBy string) types.Lead {
	if m.createFn != nil {
		return m.createFn(contactName, email, createdBy)
	}
	return types.Lead{ID: uuid.New(), ContactName: contactName, Email: email, CreatedBy: createdBy}
}

func (m *mockLeadRepo) GetByID(id uuid.UUID) (types.Lead, bool) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return types.Lead{}, false
}

func (m *mockLeadRepo) Assign(id uuid.UUID, adviserID string) (types.Lead, bool) {
	if m.assignFn != nil {
		return m.assignFn(id, adviserID)
	}
	return types.Lead{}, false
}

// newLeadRouter mounts the handler's routes without policy middleware so
// handler behavior can be tested in isolation.
func newLeadRouter(repo LeadRepo) chi.Router {
	h := NewLeadHandler(repo, core.NewValidator(slog.Default()), slog.Default())
	r := chi.NewRouter()
	r.Post("/leads", h.Create)
	r.Get("/leads/{leadId}", h.Get)
	r.Post("/leads/{leadId}/assign", h.Assign)
	return r
}

func decodeErrorCode(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp.Error.Code
}

func TestCreateLead(t *testing.T) {
	var captured struct{ contactName, email, createdBy string }
	leadID := uuid.New()
	repo := &mockLeadRepo{
		createFn: func(contactName, email, createdBy string) types.Lead {
			captured.contactName = contactName
			captured.email = email
			captured.createdBy = createdBy
			return types.Lead{ID: leadID, ContactName: contactName, Email: email, CreatedBy: createdBy}
		},
	}
	router := newLeadRouter(repo)

	body := bytes.NewBufferString(`{"contactName":"Ada Lovelace","email":"ada@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/leads", body)
	req = req.WithContext(types.WithPrincipal(req.Context(), &types.Principal{
		UserID: "u-1",
		Email:  "importer@example.com",
	}))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/leads/"+leadID.String(), rec.Header().Get("Location"))
	assert.Equal(t, "Ada Lovelace", captured.contactName)
	assert.Equal(t, "importer@example.com", captured.createdBy)

	var lead types.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, leadID, lead.ID)
	assert.Equal(t, "ada@example.com", lead.Email)
}

func TestCreateLeadAnonymousPrincipalLeavesCreatedByEmpty(t *testing.T) {
	var createdBy string
	repo := &mockLeadRepo{
		createFn: func(_, _, by string) types.Lead {
			createdBy = by
			return types.Lead{ID: uuid.New()}
		},
	}
	router := newLeadRouter(repo)

	body := bytes.NewBufferString(`{"contactName":"Ada","email":"ada@example.com"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, createdBy)
}

func TestCreateLeadValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing contact name",
			body:       `{"email":"ada@example.com"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   string(types.ErrCodeValidationMissingField),
		},
		{
			name:       "whitespace-only email",
			body:       `{"contactName":"Ada","email":"   "}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   string(types.ErrCodeValidationMissingField),
		},
		{
			name:       "malformed JSON",
			body:       `{"contactName":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(types.ErrCodeValidationInvalidJSON),
		},
		{
			name:       "unknown field",
			body:       `{"contactName":"Ada","email":"a@b.c","surprise":true}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(types.ErrCodeValidationInvalidJSON),
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(types.ErrCodeValidationInvalidJSON),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLeadRouter(&mockLeadRepo{})
			req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeErrorCode(t, rec.Body))
		})
	}
}

func TestGetLead(t *testing.T) {
	leadID := uuid.New()
	repo := &mockLeadRepo{
		getByIDFn: func(id uuid.UUID) (types.Lead, bool) {
			if id == leadID {
				return types.Lead{ID: leadID, ContactName: "Ada", Email: "ada@example.com"}, true
			}
			return types.Lead{}, false
		},
	}
	router := newLeadRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+leadID.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var lead types.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, leadID, lead.ID)
}

func TestGetLeadNotFound(t *testing.T) {
	router := newLeadRouter(&mockLeadRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(types.ErrCodeNotFoundLead), decodeErrorCode(t, rec.Body))
}

func TestGetLeadInvalidIDIsNotFound(t *testing.T) {
	router := newLeadRouter(&mockLeadRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/not-a-uuid", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(types.ErrCodeNotFoundLead), decodeErrorCode(t, rec.Body))
}

func TestAssignLead(t *testing.T) {
	leadID := uuid.New()
	var gotAdviser string
	repo := &mockLeadRepo{
		assignFn: func(id uuid.UUID, adviserID string) (types.Lead, bool) {
			gotAdviser = adviserID
			return types.Lead{ID: id, AssignedAdviserID: adviserID}, true
		},
	}
	router := newLeadRouter(repo)

	body := bytes.NewBufferString(`{"adviserId":"adv-7"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/"+leadID.String()+"/assign", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "adv-7", gotAdviser)

	var lead types.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, "adv-7", lead.AssignedAdviserID)
}

func TestAssignLeadValidation(t *testing.T) {
	router := newLeadRouter(&mockLeadRepo{})

	body := bytes.NewBufferString(`{"adviserId":"  "}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/"+uuid.NewString()+"/assign", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(types.ErrCodeValidationMissingField), decodeErrorCode(t, rec.Body))
}

func TestAssignLeadNotFound(t *testing.T) {
	router := newLeadRouter(&mockLeadRepo{})

	body := bytes.NewBufferString(`{"adviserId":"adv-7"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/"+uuid.NewString()+"/assign", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(types.ErrCodeNotFoundLead), decodeErrorCode(t, rec.Body))
}

func TestAssignLeadInvalidIDIsNotFound(t *testing.T) {
	router := newLeadRouter(&mockLeadRepo{})

	body := bytes.NewBufferString(`{"adviserId":"adv-7"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads/nope/assign", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
