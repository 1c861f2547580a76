package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/dashboard"
	"github.com/ukydev/vessel-ops/internal/models"
	"github.com/ukydev/vessel-ops/internal/navigation"
	"github.com/ukydev/vessel-ops/internal/store"
)

// Session is the operator session the dashboard endpoints drive.
type Session interface {
	State() navigation.State
	SelectView(v navigation.View) navigation.State
	Search(term string) navigation.State
	RequestSort(key string) navigation.State
	FocusVessel(name string) (navigation.State, error)
	FocusCrew(vesselID string) navigation.State
	ClearFilter() navigation.State
	Rows(v navigation.View) []models.Record
	Summary() dashboard.Summary
	ExpiringCertificates() []models.Record
	MapMarkers() dashboard.MapView
	CIISeries() []models.CIIPoint
	Reload(ctx context.Context) error
}

// DashboardHandler handles navigation and view requests
type DashboardHandler struct {
	session Session
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(session Session) *DashboardHandler {
	return &DashboardHandler{session: session}
}

// ViewResponse is the processed table of one view.
type ViewResponse struct {
	View       navigation.View  `json:"view"`
	Searchable bool             `json:"searchable"`
	Count      int              `json:"count"`
	Rows       []models.Record  `json:"rows"`
	State      navigation.State `json:"state"`
}

type viewRequest struct {
	View string `json:"view"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type sortRequest struct {
	Key string `json:"key"`
}

type focusVesselRequest struct {
	Name string `json:"name"`
}

type focusCrewRequest struct {
	VesselID string `json:"vessel_id"`
}

// Summary returns the navigation state with counts and alerts
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Summary())
}

// SelectView switches the active view
func (h *DashboardHandler) SelectView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decodePost(w, r, &req) {
		return
	}
	v, err := navigation.ParseView(req.View)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.session.SelectView(v))
}

// Search sets the search term of the active view
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodePost(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.session.Search(req.Term))
}

// Sort activates a column of the active view
func (h *DashboardHandler) Sort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Key == "" {
		http.Error(w, "Sort key is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.session.RequestSort(req.Key))
}

// FocusVessel centers the map on a vessel by name
func (h *DashboardHandler) FocusVessel(w http.ResponseWriter, r *http.Request) {
	var req focusVesselRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "Vessel name is required", http.StatusBadRequest)
		return
	}
	state, err := h.session.FocusVessel(req.Name)
	if err != nil {
		if errors.Is(err, navigation.ErrLookup) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to focus vessel", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// FocusCrew shows the crew of one vessel
func (h *DashboardHandler) FocusCrew(w http.ResponseWriter, r *http.Request) {
	var req focusCrewRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.VesselID == "" {
		http.Error(w, "Vessel ID is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.session.FocusCrew(req.VesselID))
}

// ClearFilter drops the crew filter
func (h *DashboardHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.ClearFilter())
}

// View returns the processed rows of the view named in the path
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v, err := navigation.ParseView(r.PathValue("view"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	rows := h.session.Rows(v)
	writeJSON(w, http.StatusOK, ViewResponse{
		View:       v,
		Searchable: v.Searchable(),
		Count:      len(rows),
		Rows:       rows,
		State:      h.session.State(),
	})
}

// MapMarkers returns the vessels with a position and the map focal point
func (h *DashboardHandler) MapMarkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.MapMarkers())
}

// CII returns the noon report fuel series
func (h *DashboardHandler) CII(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.CIISeries())
}

// ExpiringCertificates returns the certificates inside the alert window
func (h *DashboardHandler) ExpiringCertificates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.session.ExpiringCertificates())
}

// Reload refreshes every collection from the remote API
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// a client that hangs up must not abort the reload half way
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), store.ReloadTimeout)
	defer cancel()
	if err := h.session.Reload(ctx); err != nil {
		http.Error(w, "Failed to reload records: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Summary())
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodePost checks the method and decodes the JSON body into dst. It writes
// the error response itself and reports whether the handler should go on.
func decodePost(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}
