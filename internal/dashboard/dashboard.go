// Package dashboard is the operator session: it owns the navigation state,
// applies transitions one at a time and renders views from the current
// record snapshot.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/metrics"
	"github.com/ukydev/vessel-ops/internal/models"
	"github.com/ukydev/vessel-ops/internal/navigation"
	"github.com/ukydev/vessel-ops/internal/pipeline"
	"github.com/ukydev/vessel-ops/internal/store"
)

// Records provides the current snapshot and reloads it.
type Records interface {
	Snapshot() store.Snapshot
	Reload(ctx context.Context) error
}

// Dashboard serialises operator actions. Every transition runs under the
// same lock, so actions apply in arrival order.
type Dashboard struct {
	records       Records
	certThreshold int

	mu    sync.Mutex
	state navigation.State
}

// New starts a session in the initial state.
func New(records Records, certThreshold int) *Dashboard {
	return &Dashboard{
		records:       records,
		certThreshold: certThreshold,
		state:         navigation.Initial(),
	}
}

// TabCounts are the row counts shown next to the vessel and crew tabs.
type TabCounts struct {
	Vessels   int `json:"vessels"`
	Seafarers int `json:"seafarers"`
}

// Summary is the dashboard header: state, counts and alerts.
type Summary struct {
	State                navigation.State `json:"state"`
	Searchable           bool             `json:"searchable"`
	Tabs                 TabCounts        `json:"tabs"`
	ExpiringCertificates int              `json:"expiring_certificates"`
	CertThresholdDays    int              `json:"cert_threshold_days"`
	OverdueJobs          int              `json:"overdue_jobs"`
	RestViolations       int              `json:"rest_violations"`
	Loaded               bool             `json:"loaded"`
	LastReload           time.Time        `json:"last_reload"`
	LastAttempt          time.Time        `json:"last_attempt"`
	LastReloadError      string           `json:"last_reload_error,omitempty"`
}

// Marker is one vessel on the map.
type Marker struct {
	VesselID string          `json:"vessel_id"`
	Name     string          `json:"name"`
	Position models.Location `json:"position"`
	Record   models.Record   `json:"record"`
}

// MapView is the map focal point and the vessels that have a position.
type MapView struct {
	Focus   navigation.MapFocus `json:"focus"`
	Markers []Marker            `json:"markers"`
}

// State returns the current navigation state.
func (d *Dashboard) State() navigation.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SelectView switches the active view.
func (d *Dashboard) SelectView(v navigation.View) navigation.State {
	return d.apply(func(s navigation.State) navigation.State { return s.SelectView(v) })
}

// Search sets the free-text search term for the active view.
func (d *Dashboard) Search(term string) navigation.State {
	return d.apply(func(s navigation.State) navigation.State { return s.WithSearch(term) })
}

// RequestSort activates a column of the active view.
func (d *Dashboard) RequestSort(key string) navigation.State {
	return d.apply(func(s navigation.State) navigation.State { return s.RequestSort(key) })
}

// FocusCrew shows the crew of one vessel.
func (d *Dashboard) FocusCrew(vesselID string) navigation.State {
	return d.apply(func(s navigation.State) navigation.State { return s.FocusCrew(vesselID) })
}

// ClearFilter drops the crew filter.
func (d *Dashboard) ClearFilter() navigation.State {
	return d.apply(func(s navigation.State) navigation.State { return s.ClearFilter() })
}

// FocusVessel centers the map on the named vessel. On a lookup failure the
// state is left as it was and the error wraps navigation.ErrLookup.
func (d *Dashboard) FocusVessel(name string) (navigation.State, error) {
	vessels := d.records.Snapshot().Records(models.Vessels)

	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := d.state.FocusVessel(vessels, name)
	if err != nil {
		if errors.Is(err, navigation.ErrLookup) {
			metrics.RecordLookupFailure("focus_vessel")
		}
		log.WithError(err).WithField("vessel", name).Warn("Focus vessel rejected")
		return d.state, err
	}
	d.state = next
	return next, nil
}

func (d *Dashboard) apply(transition func(navigation.State) navigation.State) navigation.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = transition(d.state)
	return d.state
}

// Rows returns the processed records of view under the current state.
func (d *Dashboard) Rows(v navigation.View) []models.Record {
	return d.rows(d.records.Snapshot(), d.State(), v)
}

func (d *Dashboard) rows(snap store.Snapshot, s navigation.State, v navigation.View) []models.Record {
	return pipeline.Process(snap.Records(v.Collection()), s.Query(v))
}

// Summary computes the header counts and alerts.
func (d *Dashboard) Summary() Summary {
	snap := d.records.Snapshot()
	s := d.State()

	return Summary{
		State:      s,
		Searchable: s.View.Searchable(),
		Tabs: TabCounts{
			Vessels:   len(d.rows(snap, s, navigation.ViewVessels)),
			Seafarers: len(d.rows(snap, s, navigation.ViewCrew)),
		},
		ExpiringCertificates: len(models.ExpiringCertificates(snap.Records(models.Certificates), d.certThreshold)),
		CertThresholdDays:    d.certThreshold,
		OverdueJobs:          models.CountFlagged(snap.Records(models.MaintenanceJobs), "is_overdue"),
		RestViolations:       models.CountViolations(snap.Records(models.WorkHours)),
		Loaded:               snap.Loaded(),
		LastReload:           snap.LastReload,
		LastAttempt:          snap.LastAttempt,
		LastReloadError:      snap.LastReloadError,
	}
}

// ExpiringCertificates lists the certificates inside the alert window.
func (d *Dashboard) ExpiringCertificates() []models.Record {
	certs := models.ExpiringCertificates(d.records.Snapshot().Records(models.Certificates), d.certThreshold)
	if certs == nil {
		return []models.Record{}
	}
	return certs
}

// MapMarkers returns every vessel with a position plus the focal point.
// Vessels without coordinates are left off the map only.
func (d *Dashboard) MapMarkers() MapView {
	vessels := d.records.Snapshot().Records(models.Vessels)
	view := MapView{Focus: d.State().Map, Markers: []Marker{}}
	for _, v := range vessels {
		pos, ok := models.PositionOf(v)
		if !ok {
			continue
		}
		view.Markers = append(view.Markers, Marker{
			VesselID: v.ID(),
			Name:     v.Get("name").String(),
			Position: pos,
			Record:   v,
		})
	}
	return view
}

// CIISeries returns the fuel consumption chart points.
func (d *Dashboard) CIISeries() []models.CIIPoint {
	return models.CIISeries(d.records.Snapshot().Records(models.NoonReports))
}

// Reload refreshes the snapshot. The navigation state is kept.
func (d *Dashboard) Reload(ctx context.Context) error {
	return d.records.Reload(ctx)
}
