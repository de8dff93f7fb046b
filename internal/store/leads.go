// Package store holds the in-memory lead repository. Leads are independent
// keyed entities with no cross-key ordering requirements, so a mutex-guarded
// map is the whole persistence story: per-key reads and writes are atomic,
// updates replace the stored value wholesale, and nothing is ever deleted.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadsapi/internal/types"
)

// LeadRepository is a concurrency-safe in-memory store of leads. The zero
// value is not usable; construct with NewLeadRepository.
type LeadRepository struct {
	mu    sync.RWMutex
	leads map[uuid.UUID]types.Lead
}

// NewLeadRepository creates an empty lead repository.
func NewLeadRepository() *LeadRepository {
	return &LeadRepository{
		leads: make(map[uuid.UUID]types.Lead),
	}
}

// Create stores a new lead with a generated ID and UTC creation timestamp.
// Contact name and email are trimmed; createdBy records the creating
// principal's email claim and may be empty. Create always succeeds.
func (r *LeadRepository) Create(contactName, email, createdBy string) types.Lead {
	lead := types.Lead{
		ID:          uuid.New(),
		ContactName: strings.TrimSpace(contactName),
		Email:       strings.TrimSpace(email),
		CreatedUTC:  time.Now().UTC(),
		CreatedBy:   createdBy,
	}

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.mu.Unlock()

	return lead
}

// GetByID returns a copy of the lead with the given ID, or false if the ID
// is unknown.
func (r *LeadRepository) GetByID(id uuid.UUID) (types.Lead, bool) {
	r.mu.RLock()
	lead, ok := r.leads[id]
	r.mu.RUnlock()
	return lead, ok
}

// Assign sets the lead's assigned adviser, trimmed, and returns the updated
// lead. Assignment is last-write-wins: repeating the call overwrites the
// previous adviser and no history is kept. Returns false if the ID is unknown.
func (r *LeadRepository) Assign(id uuid.UUID, adviserID string) (types.Lead, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return types.Lead{}, false
	}

	lead.AssignedAdviserID = strings.TrimSpace(adviserID)
	r.leads[id] = lead
	return lead, true
}
