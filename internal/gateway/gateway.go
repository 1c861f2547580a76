// Package gateway submits operator mutations to the remote API and refreshes
// the record store after every accepted change.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/client"
	"github.com/ukydev/vessel-ops/internal/events"
	"github.com/ukydev/vessel-ops/internal/metrics"
	"github.com/ukydev/vessel-ops/internal/models"
	"github.com/ukydev/vessel-ops/internal/store"
)

// ErrMutation marks a create or update the remote API did not accept, or
// that was rejected locally before sending.
var ErrMutation = errors.New("mutation failure")

// API creates and updates records on the remote system.
type API interface {
	Create(ctx context.Context, coll models.Collection, payload any) error
	Update(ctx context.Context, coll models.Collection, id string, payload any) error
}

// Reloader refreshes every collection.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Journal records mutation attempts.
type Journal interface {
	InsertEntry(ctx context.Context, entry models.JournalEntry) error
}

// Gateway is the only path through which the dashboard changes remote data.
type Gateway struct {
	api       API
	reloader  Reloader
	journal   Journal
	publisher events.Publisher
	now       func() time.Time
}

// New creates a gateway. journal and publisher may be nil.
func New(api API, reloader Reloader, journal Journal, publisher events.Publisher) *Gateway {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Gateway{
		api:       api,
		reloader:  reloader,
		journal:   journal,
		publisher: publisher,
		now:       time.Now,
	}
}

// RegisterVessel creates a vessel.
func (g *Gateway) RegisterVessel(ctx context.Context, v models.VesselRegistration) error {
	v = v.WithDefaults()
	if err := v.Validate(); err != nil {
		return g.rejected(models.OpRegisterVessel, err)
	}
	return g.submit(ctx, models.OpRegisterVessel, models.Vessels, "", v, func() error {
		return g.api.Create(ctx, models.Vessels, v)
	})
}

// AssignSeafarer creates a seafarer, optionally boarded on a vessel.
func (g *Gateway) AssignSeafarer(ctx context.Context, s models.SeafarerAssignment) error {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return g.rejected(models.OpAssignSeafarer, err)
	}
	return g.submit(ctx, models.OpAssignSeafarer, models.Seafarers, s.Vessel, s, func() error {
		return g.api.Create(ctx, models.Seafarers, s)
	})
}

// SubmitNoonReport creates a noon report. The remote API moves the vessel to
// the reported position.
func (g *Gateway) SubmitNoonReport(ctx context.Context, n models.NoonReportSubmission) error {
	n = n.WithDefaults(g.now())
	if err := n.Validate(); err != nil {
		return g.rejected(models.OpSubmitNoonReport, err)
	}
	return g.submit(ctx, models.OpSubmitNoonReport, models.NoonReports, n.Vessel, n, func() error {
		return g.api.Create(ctx, models.NoonReports, n)
	})
}

// CompleteMaintenanceJob marks a PMS job as performed today.
func (g *Gateway) CompleteMaintenanceJob(ctx context.Context, jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return g.rejected(models.OpCompleteJob, fmt.Errorf("%w: job id is required", models.ErrInvalidPayload))
	}
	completion := models.CompletedOn(g.now())
	if err := completion.Validate(); err != nil {
		return g.rejected(models.OpCompleteJob, err)
	}
	return g.submit(ctx, models.OpCompleteJob, models.MaintenanceJobs, jobID, completion, func() error {
		return g.api.Update(ctx, models.MaintenanceJobs, jobID, completion)
	})
}

// Rejected reports whether err was caused by the payload rather than by the
// transport or the remote server.
func Rejected(err error) bool {
	if errors.Is(err, models.ErrInvalidPayload) {
		return true
	}
	var statusErr *client.StatusError
	return errors.As(err, &statusErr) && statusErr.ClientError()
}

func (g *Gateway) rejected(op string, err error) error {
	metrics.RecordMutation(op, false)
	log.WithError(err).WithField("operation", op).Warn("Mutation rejected")
	return fmt.Errorf("%w: %s: %w", ErrMutation, op, err)
}

// submit sends one mutation. Only an accepted mutation triggers a reload; a
// failed reload afterwards does not turn the mutation into a failure.
//
// Once the request has gone out, journaling, publishing and reloading run
// detached from ctx so a caller that goes away cannot leave the store stale.
func (g *Gateway) submit(ctx context.Context, op string, coll models.Collection, targetID string, payload any, send func() error) error {
	err := send()

	after, cancel := context.WithTimeout(context.WithoutCancel(ctx), store.ReloadTimeout)
	defer cancel()

	g.record(after, op, coll, targetID, payload, err)
	metrics.RecordMutation(op, err == nil)

	fields := log.Fields{"operation": op, "collection": coll, "target_id": targetID}
	if err != nil {
		log.WithError(err).WithFields(fields).Error("Mutation failed")
		return fmt.Errorf("%w: %s: %w", ErrMutation, op, err)
	}
	log.WithFields(fields).Info("Mutation accepted")

	event := events.Event{Operation: op, Collection: coll, TargetID: targetID, OccurredAt: g.now()}
	if perr := g.publisher.Publish(after, event); perr != nil {
		log.WithError(perr).WithFields(fields).Warn("Failed to publish mutation event")
	}

	if rerr := g.reloader.Reload(after); rerr != nil {
		log.WithError(rerr).WithFields(fields).Warn("Reload after mutation failed")
	}
	return nil
}

func (g *Gateway) record(ctx context.Context, op string, coll models.Collection, targetID string, payload any, sendErr error) {
	if g.journal == nil {
		return
	}
	entry := models.JournalEntry{
		Operation:  op,
		Collection: coll,
		TargetID:   targetID,
		Payload:    payloadMap(payload),
		Success:    sendErr == nil,
		CreatedAt:  g.now(),
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}
	if err := g.journal.InsertEntry(ctx, entry); err != nil {
		log.WithError(err).WithField("operation", op).Warn("Failed to journal mutation")
	}
}

// payloadMap converts a payload struct to the field map stored in the journal.
func payloadMap(payload any) map[string]interface{} {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
