package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mutation operations recorded in the journal.
const (
	OpRegisterVessel   = "register_vessel"
	OpAssignSeafarer   = "assign_seafarer"
	OpSubmitNoonReport = "submit_noon_report"
	OpCompleteJob      = "complete_maintenance_job"
)

// JournalEntry records one attempted mutation against the remote API.
type JournalEntry struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Operation  string                 `bson:"operation" json:"operation"`
	Collection Collection             `bson:"collection" json:"collection"`
	TargetID   string                 `bson:"target_id,omitempty" json:"target_id,omitempty"`
	Payload    map[string]interface{} `bson:"payload" json:"payload"`
	Success    bool                   `bson:"success" json:"success"`
	Error      string                 `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt  time.Time              `bson:"created_at" json:"created_at"`
}
