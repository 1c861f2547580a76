package handlers

import (
	"context"
	"net/http"

	"github.com/ukydev/vessel-ops/internal/gateway"
	"github.com/ukydev/vessel-ops/internal/models"
)

// Mutations is the set of changes an operator can submit.
type Mutations interface {
	RegisterVessel(ctx context.Context, v models.VesselRegistration) error
	AssignSeafarer(ctx context.Context, s models.SeafarerAssignment) error
	SubmitNoonReport(ctx context.Context, n models.NoonReportSubmission) error
	CompleteMaintenanceJob(ctx context.Context, jobID string) error
}

// MutationHandler handles create and update requests
type MutationHandler struct {
	mutations Mutations
}

// NewMutationHandler creates a new mutation handler
func NewMutationHandler(mutations Mutations) *MutationHandler {
	return &MutationHandler{mutations: mutations}
}

// RegisterVessel creates a vessel
func (h *MutationHandler) RegisterVessel(w http.ResponseWriter, r *http.Request) {
	var req models.VesselRegistration
	if !decodePost(w, r, &req) {
		return
	}
	if err := h.mutations.RegisterVessel(r.Context(), req); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Vessel registered"})
}

// AssignSeafarer creates a seafarer
func (h *MutationHandler) AssignSeafarer(w http.ResponseWriter, r *http.Request) {
	var req models.SeafarerAssignment
	if !decodePost(w, r, &req) {
		return
	}
	if err := h.mutations.AssignSeafarer(r.Context(), req); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Seafarer assigned"})
}

// SubmitNoonReport creates a noon report
func (h *MutationHandler) SubmitNoonReport(w http.ResponseWriter, r *http.Request) {
	var req models.NoonReportSubmission
	if !decodePost(w, r, &req) {
		return
	}
	if err := h.mutations.SubmitNoonReport(r.Context(), req); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Noon report submitted"})
}

// CompleteMaintenanceJob marks the job in the path as performed today
func (h *MutationHandler) CompleteMaintenanceJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.mutations.CompleteMaintenanceJob(r.Context(), r.PathValue("id")); err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Maintenance job completed"})
}

// writeMutationError maps payload problems to 422 and everything else to 502.
func writeMutationError(w http.ResponseWriter, err error) {
	if gateway.Rejected(err) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, err.Error(), http.StatusBadGateway)
}
