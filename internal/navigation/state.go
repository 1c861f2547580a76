// Package navigation holds the operator's transient view state and the named
// transitions that move between the map and the tabular views.
package navigation

import (
	"errors"
	"fmt"

	"github.com/ukydev/vessel-ops/internal/models"
	"github.com/ukydev/vessel-ops/internal/pipeline"
)

var (
	// ErrLookup marks a transition that referenced a missing record or one
	// without the data the transition needs.
	ErrLookup           = errors.New("lookup failure")
	ErrVesselNotFound   = fmt.Errorf("%w: vessel not found", ErrLookup)
	ErrVesselNoPosition = fmt.Errorf("%w: vessel has no position", ErrLookup)
	ErrUnknownView      = errors.New("unknown view")
)

// Map zoom levels.
const (
	WorldZoom  = 2
	VesselZoom = 6
)

// DefaultCenter is the world-view map center.
var DefaultCenter = models.Location{Lat: 20, Lon: 120}

// MapFocus is the map focal point.
type MapFocus struct {
	Center models.Location `json:"center"`
	Zoom   int             `json:"zoom"`
}

// State is the operator's view state. Transitions return a new State and
// leave the receiver untouched.
type State struct {
	View       View              `json:"view"`
	CrewVessel string            `json:"crew_vessel,omitempty"` // vessel id scoping the crew view; "" when unscoped
	Search     string            `json:"search"`
	Sort       pipeline.SortSpec `json:"sort"`
	Map        MapFocus          `json:"map"`
}

// Initial returns the startup state: first view, no filter, world map.
func Initial() State {
	return State{
		View: Views[0],
		Map:  MapFocus{Center: DefaultCenter, Zoom: WorldZoom},
	}
}

// HasCrewFilter reports whether the crew view is scoped to a vessel.
func (s State) HasCrewFilter() bool { return s.CrewVessel != "" }

// SelectView switches to v. Search and sort always reset; the crew filter is
// dropped unless v is the crew view.
func (s State) SelectView(v View) State {
	s.View = v
	s.Search = ""
	s.Sort = pipeline.SortSpec{}
	if v != ViewCrew {
		s.CrewVessel = ""
	}
	return s
}

// FocusVessel centers the map on the named vessel and shows the map view.
func (s State) FocusVessel(vessels []models.Record, name string) (State, error) {
	var target models.Record
	for _, v := range vessels {
		if v.Get("name").String() == name {
			target = v
			break
		}
	}
	if target == nil {
		return s, fmt.Errorf("%w: %q", ErrVesselNotFound, name)
	}
	pos, ok := models.PositionOf(target)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrVesselNoPosition, name)
	}

	s.Map = MapFocus{Center: pos, Zoom: VesselZoom}
	return s.SelectView(ViewDashboard), nil
}

// FocusCrew shows the crew view scoped to one vessel. The filter is set
// first and survives the switch because SelectView keeps it for the crew
// view; the map returns to the world view.
func (s State) FocusCrew(vesselID string) State {
	s.CrewVessel = vesselID
	s.Map = MapFocus{Center: DefaultCenter, Zoom: WorldZoom}
	return s.SelectView(ViewCrew)
}

// ClearFilter drops the crew filter and nothing else.
func (s State) ClearFilter() State {
	s.CrewVessel = ""
	return s
}

// WithSearch sets the free-text search term.
func (s State) WithSearch(term string) State {
	s.Search = term
	return s
}

// RequestSort applies a column activation to the current sort.
func (s State) RequestSort(key string) State {
	s.Sort = s.Sort.Request(key)
	return s
}

// Query builds the pipeline query for view under this state. Search, sort
// and the crew scope belong to the active view; any other view gets the
// empty query.
func (s State) Query(v View) pipeline.Query {
	if v != s.View {
		return pipeline.Query{}
	}
	q := pipeline.Query{Search: s.Search, Sort: s.Sort}
	if v == ViewCrew && s.HasCrewFilter() {
		q.Scope = pipeline.VesselScope(s.CrewVessel)
	}
	return q
}
