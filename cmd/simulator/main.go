package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/client"
	"github.com/ukydev/vessel-ops/internal/config"
	"github.com/ukydev/vessel-ops/internal/models"
	"golang.org/x/sync/errgroup"
)

// fleetAPI is the part of the remote API the simulator uses.
type fleetAPI interface {
	List(ctx context.Context, coll models.Collection) ([]models.Record, error)
	Create(ctx context.Context, coll models.Collection, payload any) error
}

// Major ports for realistic voyages
var ports = []models.Location{
	{Lat: 1.2644, Lon: 103.8222},   // Singapore
	{Lat: 31.2304, Lon: 121.4737},  // Shanghai
	{Lat: 35.1028, Lon: 129.0403},  // Busan
	{Lat: 22.3193, Lon: 114.1694},  // Hong Kong
	{Lat: 51.9490, Lon: 4.1453},    // Rotterdam
	{Lat: 53.5461, Lon: 9.9661},    // Hamburg
	{Lat: 25.0118, Lon: 55.0617},   // Jebel Ali
	{Lat: 33.7405, Lon: -118.2775}, // Los Angeles
	{Lat: 40.6681, Lon: -74.0451},  // New York / New Jersey
	{Lat: -23.9608, Lon: -46.3336}, // Santos
	{Lat: -33.8600, Lon: 18.4300},  // Cape Town
	{Lat: -33.8568, Lon: 151.2153}, // Sydney
	{Lat: 35.4437, Lon: 139.6380},  // Yokohama
	{Lat: 18.9490, Lon: 72.9510},   // Nhava Sheva
	{Lat: 29.9668, Lon: 32.5498},   // Suez
	{Lat: 36.1408, Lon: -5.3536},   // Gibraltar
}

const metersPerNauticalMile = 1852.0

func jitterLocation(base models.Location, meters float64) models.Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func randomPort() models.Location {
	base := ports[rand.Intn(len(ports))]
	return jitterLocation(base, 2000) // anchorage, not the berth
}

// --- Voyage & movement ---

type VoyageRoute struct {
	Points    []models.Location
	SegIndex  int
	SegOffset float64 // nautical miles along current segment
}

type VoyageState struct {
	VesselID   string
	Name       string
	Position   models.Location
	SOGKnots   float64
	FuelPerNM  float64 // metric tonnes per nautical mile
	Route      *VoyageRoute
	ReportDate time.Time
}

func haversineNM(a, b models.Location) float64 {
	R := 6371000.0 / metersPerNauticalMile
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b models.Location, t float64) models.Location {
	return models.Location{Lat: a.Lat + (b.Lat-a.Lat)*t, Lon: a.Lon + (b.Lon-a.Lon)*t}
}

// planNewRoute sends the vessel towards a distant port. Waypoints split the
// leg so long crossings are not one straight segment.
func planNewRoute(s *VoyageState) {
	start := s.Position
	end := randomPort()
	for i := 0; i < 10; i++ {
		if haversineNM(start, end) > 300 {
			break
		}
		end = randomPort()
	}
	const legs = 8
	pts := make([]models.Location, 0, legs+1)
	for i := 0; i <= legs; i++ {
		pts = append(pts, lerp(start, end, float64(i)/legs))
	}
	s.Route = &VoyageRoute{Points: pts}
}

// stepAlongRoute advances the vessel by hours at its current speed and
// returns the distance sailed in nautical miles.
func stepAlongRoute(s *VoyageState, hours float64) float64 {
	if s.Route == nil || len(s.Route.Points) < 2 {
		planNewRoute(s)
	}
	sailed := 0.0
	remNM := s.SOGKnots * hours
	for remNM > 0 && s.Route.SegIndex < len(s.Route.Points)-1 {
		a := s.Route.Points[s.Route.SegIndex]
		b := s.Route.Points[s.Route.SegIndex+1]
		segLen := haversineNM(a, b)
		leftOnSeg := segLen - s.Route.SegOffset
		if remNM >= leftOnSeg {
			// advance to next segment
			s.Position = b
			s.Route.SegIndex++
			s.Route.SegOffset = 0
			remNM -= leftOnSeg
			sailed += leftOnSeg
			continue
		}
		// stay on current segment
		t := (s.Route.SegOffset + remNM) / segLen
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		s.Position = lerp(a, b, t)
		s.Route.SegOffset += remNM
		sailed += remNM
		remNM = 0
	}
	// arrived, plan the next voyage
	if s.Route.SegIndex >= len(s.Route.Points)-1 {
		planNewRoute(s)
	}
	return sailed
}

func noonReportFromState(s *VoyageState, distance float64) models.NoonReportSubmission {
	return models.NoonReportSubmission{
		Vessel:          s.VesselID,
		Latitude:        math.Round(s.Position.Lat*10000) / 10000,
		Longitude:       math.Round(s.Position.Lon*10000) / 10000,
		Distance:        math.Round(distance*10) / 10,
		FuelConsumption: math.Round(distance*s.FuelPerNM*100) / 100,
		SOG:             math.Round(s.SOGKnots*10) / 10,
		ReportDate:      s.ReportDate.Format(models.DateLayout),
	}
}

func sendNoonReport(ctx context.Context, api fleetAPI, report models.NoonReportSubmission) error {
	if err := report.Validate(); err != nil {
		return err
	}
	if err := api.Create(ctx, models.NoonReports, report); err != nil {
		return fmt.Errorf("failed to send noon report: %w", err)
	}
	log.WithFields(log.Fields{
		"vessel":      report.Vessel,
		"report_date": report.ReportDate,
		"distance":    report.Distance,
		"fuel":        report.FuelConsumption,
	}).Info("Sent noon report")
	return nil
}

// newVoyage builds the simulation state of one vessel record. Vessels without
// a position start at a random port.
func newVoyage(vessel models.Record, start time.Time) *VoyageState {
	pos, ok := models.PositionOf(vessel)
	if !ok {
		pos = randomPort()
	}
	return &VoyageState{
		VesselID:   vessel.ID(),
		Name:       vessel.Get("name").String(),
		Position:   pos,
		SOGKnots:   12 + rand.Float64()*8,
		FuelPerNM:  0.08 + rand.Float64()*0.08,
		ReportDate: start,
	}
}

func loadVoyages(ctx context.Context, api fleetAPI, maxVessels int, start time.Time) ([]*VoyageState, error) {
	vessels, err := api.List(ctx, models.Vessels)
	if err != nil {
		return nil, fmt.Errorf("failed to list vessels: %w", err)
	}
	states := make([]*VoyageState, 0, len(vessels))
	for _, v := range vessels {
		if len(states) >= maxVessels {
			break
		}
		if v.ID() == "" {
			continue
		}
		states = append(states, newVoyage(v, start))
	}
	return states, nil
}

// simulateVessel sends one noon report per tick. Every tick covers a full
// simulated day at sea.
func simulateVessel(ctx context.Context, api fleetAPI, s *VoyageState, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		// small speed noise
		s.SOGKnots += (rand.Float64()*2 - 1) * 0.5
		if s.SOGKnots < 8 {
			s.SOGKnots = 8
		}
		if s.SOGKnots > 22 {
			s.SOGKnots = 22
		}

		distance := stepAlongRoute(s, 24)
		if err := sendNoonReport(ctx, api, noonReportFromState(s, distance)); err != nil {
			log.WithError(err).WithField("vessel", s.Name).Error("Noon report rejected")
		}
		s.ReportDate = s.ReportDate.AddDate(0, 0, 1)
	}
}

func envInt(key string, fallback, minimum int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= minimum {
			return n
		}
		log.WithField(key, v).Warn("Ignoring invalid value")
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.WithError(err).Fatal("Invalid logging configuration")
	}

	maxVessels := envInt("SIM_MAX_VESSELS", 10, 1)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 5, 1)) * time.Second

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)

	log.WithFields(log.Fields{
		"max_vessels": maxVessels,
		"api_url":     api.BaseURL(),
		"interval":    interval,
	}).Info("Starting voyage simulation")

	states, err := loadVoyages(ctx, api, maxVessels, time.Now())
	if err != nil {
		log.WithError(err).Fatal("Failed to load fleet")
	}
	log.WithField("vessels", len(states)).Info("Fleet loaded")
	if len(states) == 0 {
		log.Error("No vessels to simulate. Register vessels through the dashboard first. Exiting.")
		return
	}

	var g errgroup.Group
	for _, s := range states {
		planNewRoute(s)
		g.Go(func() error {
			simulateVessel(ctx, api, s, interval)
			return nil
		})
	}

	log.Info("Noon report simulation started")
	_ = g.Wait()
	log.Info("Simulation stopped")
}
