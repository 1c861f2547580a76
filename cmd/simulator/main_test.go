package main

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/vessel-ops/internal/client"
	"github.com/ukydev/vessel-ops/internal/models"
)

type fakeFleet struct {
	mu       sync.Mutex
	vessels  []models.Record
	listErr  error
	reports  []models.NoonReportSubmission
	createFn func() error
}

func (f *fakeFleet) List(ctx context.Context, coll models.Collection) ([]models.Record, error) {
	return f.vessels, f.listErr
}

func (f *fakeFleet) Create(ctx context.Context, coll models.Collection, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFn != nil {
		if err := f.createFn(); err != nil {
			return err
		}
	}
	f.reports = append(f.reports, payload.(models.NoonReportSubmission))
	return nil
}

func (f *fakeFleet) sent() []models.NoonReportSubmission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.NoonReportSubmission(nil), f.reports...)
}

func TestJitterLocation(t *testing.T) {
	base := models.Location{Lat: 1.2644, Lon: 103.8222}
	for i := 0; i < 100; i++ {
		loc := jitterLocation(base, 2000)
		assert.LessOrEqual(t, haversineNM(base, loc)*metersPerNauticalMile, 2000*math.Sqrt2+1)
	}
}

func TestRandomPort(t *testing.T) {
	loc := randomPort()
	nearest := math.Inf(1)
	for _, p := range ports {
		nearest = math.Min(nearest, haversineNM(p, loc))
	}
	assert.Less(t, nearest, 2.0, "random port must be within a couple of miles of a listed port")
}

func TestHaversineNM(t *testing.T) {
	rotterdam := models.Location{Lat: 51.9490, Lon: 4.1453}
	assert.Equal(t, 0.0, haversineNM(rotterdam, rotterdam))

	// one degree of latitude is sixty nautical miles
	oneDegree := haversineNM(models.Location{Lat: 0, Lon: 0}, models.Location{Lat: 1, Lon: 0})
	assert.InDelta(t, 60.0, oneDegree, 0.2)
}

func TestStepAlongRoute(t *testing.T) {
	start := models.Location{Lat: 0, Lon: 0}
	s := &VoyageState{
		Position: start,
		SOGKnots: 10,
		Route: &VoyageRoute{Points: []models.Location{
			start, {Lat: 0, Lon: 10},
		}},
	}

	sailed := stepAlongRoute(s, 24)
	assert.InDelta(t, 240.0, sailed, 0.001)
	assert.InDelta(t, 240.0, haversineNM(start, s.Position), 1.0)
	assert.Equal(t, 0.0, s.Position.Lat)
}

func TestStepAlongRoute_ArrivalPlansNextVoyage(t *testing.T) {
	start := models.Location{Lat: 0, Lon: 0}
	end := models.Location{Lat: 0, Lon: 1}
	s := &VoyageState{
		Position: start,
		SOGKnots: 20,
		Route:    &VoyageRoute{Points: []models.Location{start, end}},
	}

	sailed := stepAlongRoute(s, 24)
	assert.InDelta(t, haversineNM(start, end), sailed, 0.001, "distance stops at the destination")
	assert.Equal(t, end, s.Position)
	require.NotNil(t, s.Route)
	assert.Equal(t, 0, s.Route.SegIndex)
	assert.Equal(t, end, s.Route.Points[0], "next voyage departs from the arrival port")
}

func TestNoonReportFromState(t *testing.T) {
	s := &VoyageState{
		VesselID:   "7",
		Position:   models.Location{Lat: 35.10004, Lon: 129.00004},
		SOGKnots:   12.34,
		FuelPerNM:  0.125,
		ReportDate: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	report := noonReportFromState(s, 240)
	assert.NoError(t, report.Validate())
	assert.Equal(t, "7", report.Vessel)
	assert.Equal(t, 35.1, report.Latitude)
	assert.Equal(t, 30.0, report.FuelConsumption)
	assert.Equal(t, 12.3, report.SOG)
	assert.Equal(t, "2024-03-01", report.ReportDate)
	assert.Equal(t, 125.0, models.CIIScore(report.FuelConsumption, report.Distance))
}

func TestSendNoonReport(t *testing.T) {
	report := models.NoonReportSubmission{Vessel: "7", Latitude: 1, Longitude: 2, Distance: 240, FuelConsumption: 30, SOG: 10, ReportDate: "2024-03-01"}

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/noon-reports/", r.URL.Path)
			assert.Equal(t, "Bearer sim-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		err := sendNoonReport(context.Background(), client.New(server.URL, "sim-token", time.Second), report)
		assert.NoError(t, err)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		err := sendNoonReport(context.Background(), client.New(server.URL, "", time.Second), report)
		var statusErr *client.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	})

	t.Run("invalid report is not sent", func(t *testing.T) {
		fleet := &fakeFleet{}
		bad := report
		bad.Vessel = ""
		err := sendNoonReport(context.Background(), fleet, bad)
		assert.ErrorIs(t, err, models.ErrInvalidPayload)
		assert.Empty(t, fleet.sent())
	})
}

func TestLoadVoyages(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	fleet := &fakeFleet{vessels: []models.Record{
		{"id": models.Number(7), "name": models.Text("Atlantic Star"), "latitude": models.Number(35.1), "longitude": models.Number(129.0)},
		{"name": models.Text("No Id")},
		{"id": models.Number(9), "name": models.Text("Ghost Ship")},
		{"id": models.Number(11), "name": models.Text("Pacific Dawn")},
	}}

	states, err := loadVoyages(context.Background(), fleet, 2, start)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "7", states[0].VesselID)
	assert.Equal(t, models.Location{Lat: 35.1, Lon: 129.0}, states[0].Position)
	assert.Equal(t, "9", states[1].VesselID)
	assert.NotEqual(t, models.Location{}, states[1].Position, "vessels without a position start in port")
	assert.GreaterOrEqual(t, states[0].SOGKnots, 12.0)

	fleet.listErr = errors.New("status 503")
	_, err = loadVoyages(context.Background(), fleet, 2, start)
	assert.Error(t, err)
}

func TestSimulateVessel_ReportsDaily(t *testing.T) {
	fleet := &fakeFleet{}
	s := newVoyage(models.Record{"id": models.Number(7), "name": models.Text("Atlantic Star"), "latitude": models.Number(35.1), "longitude": models.Number(129.0)},
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	planNewRoute(s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		simulateVessel(ctx, fleet, s, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(fleet.sent()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	reports := fleet.sent()
	assert.Equal(t, "2024-03-01", reports[0].ReportDate)
	assert.Equal(t, "2024-03-02", reports[1].ReportDate)
	for _, r := range reports {
		assert.Equal(t, "7", r.Vessel)
		assert.Greater(t, r.Distance, 0.0)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SIM_TEST_VALUE", "4")
	assert.Equal(t, 4, envInt("SIM_TEST_VALUE", 10, 1))

	t.Setenv("SIM_TEST_VALUE", "0")
	assert.Equal(t, 10, envInt("SIM_TEST_VALUE", 10, 1))

	t.Setenv("SIM_TEST_VALUE", "lots")
	assert.Equal(t, 10, envInt("SIM_TEST_VALUE", 10, 1))
}
