package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar date format exchanged with the remote API.
const DateLayout = "2006-01-02"

// NoonReportSubmission is the create payload for the noon-reports collection.
// The remote API moves the reporting vessel to the submitted position.
type NoonReportSubmission struct {
	Vessel          string  `json:"vessel" bson:"vessel"`
	Latitude        float64 `json:"latitude" bson:"latitude"`
	Longitude       float64 `json:"longitude" bson:"longitude"`
	Distance        float64 `json:"distance" bson:"distance"`                 // nautical miles
	FuelConsumption float64 `json:"fuel_consumption" bson:"fuel_consumption"` // metric tonnes
	SOG             float64 `json:"sog" bson:"sog"`                           // knots
	ReportDate      string  `json:"report_date" bson:"report_date"`
}

// WithDefaults sets the report date to today when it is empty.
func (n NoonReportSubmission) WithDefaults(now time.Time) NoonReportSubmission {
	if n.ReportDate == "" {
		n.ReportDate = now.Format(DateLayout)
	}
	return n
}

// Validate checks required fields and coordinate ranges.
func (n NoonReportSubmission) Validate() error {
	if strings.TrimSpace(n.Vessel) == "" {
		return fmt.Errorf("%w: vessel is required", ErrInvalidPayload)
	}
	if n.Latitude < -90 || n.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidPayload, n.Latitude)
	}
	if n.Longitude < -180 || n.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidPayload, n.Longitude)
	}
	if n.Distance < 0 || n.FuelConsumption < 0 || n.SOG < 0 {
		return fmt.Errorf("%w: distance, fuel_consumption and sog must not be negative", ErrInvalidPayload)
	}
	if _, err := time.Parse(DateLayout, n.ReportDate); err != nil {
		return fmt.Errorf("%w: report_date %q: %v", ErrInvalidPayload, n.ReportDate, err)
	}
	return nil
}

// CIIScore is the simplified carbon intensity indicator: fuel burnt per
// thousand miles sailed, rounded to two decimals.
func CIIScore(fuel, distance float64) float64 {
	if distance == 0 {
		return 0
	}
	return math.Round(fuel/distance*1000*100) / 100
}

// CIIPoint is one noon report in the fuel consumption series.
type CIIPoint struct {
	ReportDate      string  `json:"report_date"`
	VesselID        string  `json:"vessel"`
	FuelConsumption float64 `json:"fuel_consumption"`
	Distance        float64 `json:"distance"`
	CIIScore        float64 `json:"cii_score"`
}

// CIISeries converts noon report records into chart points, in record order.
// Reports without a numeric fuel consumption are skipped.
func CIISeries(reports []Record) []CIIPoint {
	points := make([]CIIPoint, 0, len(reports))
	for _, r := range reports {
		fuel, ok := r.Get("fuel_consumption").Float()
		if !ok {
			continue
		}
		distance, _ := r.Get("distance").Float()
		points = append(points, CIIPoint{
			ReportDate:      r.Get("report_date").String(),
			VesselID:        r.Get("vessel").String(),
			FuelConsumption: fuel,
			Distance:        distance,
			CIIScore:        CIIScore(fuel, distance),
		})
	}
	return points
}
