// Package handlers contains the HTTP handler implementations for the Leads API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"leadsapi/internal/auth"
	"leadsapi/internal/core"
	"leadsapi/internal/types"
)

// LeadRepo defines the data access contract for lead operations used by the
// lead handler. Mirrors the concrete store.LeadRepository methods.
type LeadRepo interface {
	Create(contactName, email, createdBy string) types.Lead
	GetByID(id uuid.UUID) (types.Lead, bool)
	Assign(id uuid.UUID, adviserID string) (types.Lead, bool)
}

// LeadHandler manages lead creation, retrieval, and adviser assignment.
type LeadHandler struct {
	repo      LeadRepo
	validator *core.Validator
	logger    *slog.Logger
}

// NewLeadHandler creates a new LeadHandler with the provided dependencies.
func NewLeadHandler(repo LeadRepo, v *core.Validator, l *slog.Logger) *LeadHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LeadHandler{
		repo:      repo,
		validator: v,
		logger:    l,
	}
}

// Create handles POST /leads.
//
//  1. Decode and validate the request body.
//  2. Record the creating principal's email, when one is known.
//  3. Store the lead and return 201 with a Location header.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.CreateLeadRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	createdBy := ""
	if principal, ok := types.GetPrincipal(r.Context()); ok {
		createdBy = principal.Email
	}

	lead := h.repo.Create(req.ContactName, req.Email, createdBy)

	h.logger.Info("lead created",
		slog.String("lead_id", lead.ID.String()),
		slog.String("created_by", createdBy),
	)

	w.Header().Set("Location", "/leads/"+lead.ID.String())
	core.JSON(w, r, http.StatusCreated, lead)
}

// Get handles GET /leads/{leadId}.
// A syntactically invalid ID is indistinguishable from an absent lead: both
// return 404.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadId"))
	if err != nil {
		core.Error(w, r, leadNotFound())
		return
	}

	lead, ok := h.repo.GetByID(id)
	if !ok {
		core.Error(w, r, leadNotFound())
		return
	}

	core.JSON(w, r, http.StatusOK, lead)
}

// Assign handles POST /leads/{leadId}/assign.
// Re-assignment is permitted; the latest adviser wins.
func (h *LeadHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadId"))
	if err != nil {
		core.Error(w, r, leadNotFound())
		return
	}

	var req types.AssignLeadRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	lead, ok := h.repo.Assign(id, req.AdviserID)
	if !ok {
		core.Error(w, r, leadNotFound())
		return
	}

	h.logger.Info("lead assigned",
		slog.String("lead_id", lead.ID.String()),
		slog.String("adviser_id", lead.AssignedAdviserID),
	)

	core.JSON(w, r, http.StatusOK, lead)
}

func leadNotFound() *types.AppError {
	return types.NewAppError(types.ErrCodeNotFoundLead, "lead not found", nil)
}

// Routes returns a registrar binding each lead endpoint to its authorization
// policy. Every route carries a policy; there are no unauthenticated lead
// endpoints.
func (h *LeadHandler) Routes(s *core.Server) core.RouteRegistrar {
	return func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.With(s.RequirePolicy(auth.ImportLead)).Post("/", h.Create)
			r.With(s.RequirePolicy(auth.ReadLead)).Get("/{leadId}", h.Get)
			r.With(s.RequirePolicy(auth.AssignLead)).Post("/{leadId}/assign", h.Assign)
		})
	}
}
