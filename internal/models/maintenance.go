package models

import (
	"fmt"
	"time"
)

// MaintenanceCompletion is the partial update that marks a PMS job as done.
type MaintenanceCompletion struct {
	LastPerformed string `json:"last_performed" bson:"last_performed"`
}

// CompletedOn builds the completion payload for the given day.
func CompletedOn(day time.Time) MaintenanceCompletion {
	return MaintenanceCompletion{LastPerformed: day.Format(DateLayout)}
}

// Validate checks the completion date.
func (m MaintenanceCompletion) Validate() error {
	if _, err := time.Parse(DateLayout, m.LastPerformed); err != nil {
		return fmt.Errorf("%w: last_performed %q: %v", ErrInvalidPayload, m.LastPerformed, err)
	}
	return nil
}

// CountFlagged returns how many records have a truthy value in field, e.g.
// is_overdue on maintenance jobs or is_violation on work-hour entries.
func CountFlagged(records []Record, field string) int {
	n := 0
	for _, r := range records {
		if r.Get(field).Truthy() {
			n++
		}
	}
	return n
}
