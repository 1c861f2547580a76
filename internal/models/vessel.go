package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload is returned when a mutation payload fails local validation.
var ErrInvalidPayload = errors.New("invalid payload")

// VesselType is the vessel classification accepted by the remote API.
type VesselType string

const (
	VesselContainer VesselType = "CONTAINER"
	VesselBulk      VesselType = "BULK"
	VesselLNG       VesselType = "LNG"
	VesselTanker    VesselType = "TANKER"
)

// IsValidVesselType checks if t is a known vessel type.
func IsValidVesselType(t VesselType) bool {
	switch t {
	case VesselContainer, VesselBulk, VesselLNG, VesselTanker:
		return true
	default:
		return false
	}
}

// VesselRegistration is the create payload for the vessels collection.
type VesselRegistration struct {
	Name       string     `json:"name" bson:"name"`
	IMONumber  string     `json:"imo_number" bson:"imo_number"`
	VesselType VesselType `json:"vessel_type" bson:"vessel_type"`
	BuiltYear  int        `json:"built_year" bson:"built_year"`
}

// WithDefaults fills the fields the registration form pre-selects.
func (v VesselRegistration) WithDefaults() VesselRegistration {
	if v.VesselType == "" {
		v.VesselType = VesselContainer
	}
	if v.BuiltYear == 0 {
		v.BuiltYear = 2020
	}
	return v
}

// Validate checks required fields.
func (v VesselRegistration) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPayload)
	}
	if strings.TrimSpace(v.IMONumber) == "" {
		return fmt.Errorf("%w: imo_number is required", ErrInvalidPayload)
	}
	if !IsValidVesselType(v.VesselType) {
		return fmt.Errorf("%w: unknown vessel_type %q", ErrInvalidPayload, v.VesselType)
	}
	if v.BuiltYear <= 0 {
		return fmt.Errorf("%w: built_year must be positive", ErrInvalidPayload)
	}
	return nil
}
