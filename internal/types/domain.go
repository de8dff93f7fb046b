// Package types defines the shared domain model for the Leads API: the Lead
// entity, the request Principal, typed application errors, and the request
// context accessors used across packages.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Lead is the domain entity managed by this service. Leads are created once,
// optionally assigned to an adviser, and never deleted. Instances returned by
// the repository are value copies; mutating one has no effect on stored state.
type Lead struct {
	ID                uuid.UUID `json:"id"`
	ContactName       string    `json:"contactName"`
	Email             string    `json:"email"`
	CreatedUTC        time.Time `json:"createdUtc"`
	CreatedBy         string    `json:"createdBy,omitempty"`
	AssignedAdviserID string    `json:"assignedAdviserId,omitempty"`
}

// CreateLeadRequest is the request body for POST /leads.
type CreateLeadRequest struct {
	ContactName string `json:"contactName" validate:"notblank"`
	Email       string `json:"email" validate:"notblank"`
}

// AssignLeadRequest is the request body for POST /leads/{leadId}/assign.
type AssignLeadRequest struct {
	AdviserID string `json:"adviserId" validate:"notblank"`
}
