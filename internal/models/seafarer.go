package models

import (
	"fmt"
	"strings"
)

// Rank is a seafarer's position on board.
type Rank string

const (
	RankCaptain       Rank = "CAPTAIN"
	RankChiefMate     Rank = "CHIEF_MATE"
	RankChiefEngineer Rank = "CHIEF_ENGINEER"
	RankAbleSeaman    Rank = "ABLE_SEAMAN"
)

// IsValidRank checks if r is a known rank.
func IsValidRank(r Rank) bool {
	switch r {
	case RankCaptain, RankChiefMate, RankChiefEngineer, RankAbleSeaman:
		return true
	default:
		return false
	}
}

// SeafarerAssignment is the create payload for the seafarers collection.
// An empty Vessel registers the seafarer as unassigned.
type SeafarerAssignment struct {
	Name        string `json:"name" bson:"name"`
	Rank        Rank   `json:"rank" bson:"rank"`
	Nationality string `json:"nationality" bson:"nationality"`
	Vessel      string `json:"vessel,omitempty" bson:"vessel,omitempty"`
}

// WithDefaults fills the fields the boarding form pre-selects.
func (s SeafarerAssignment) WithDefaults() SeafarerAssignment {
	if s.Rank == "" {
		s.Rank = RankAbleSeaman
	}
	if s.Nationality == "" {
		s.Nationality = "Korea"
	}
	return s
}

// Validate checks required fields.
func (s SeafarerAssignment) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPayload)
	}
	if !IsValidRank(s.Rank) {
		return fmt.Errorf("%w: unknown rank %q", ErrInvalidPayload, s.Rank)
	}
	if strings.TrimSpace(s.Nationality) == "" {
		return fmt.Errorf("%w: nationality is required", ErrInvalidPayload)
	}
	return nil
}
