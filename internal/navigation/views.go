package navigation

import (
	"fmt"

	"github.com/ukydev/vessel-ops/internal/models"
)

// View identifies one dashboard tab.
type View string

const (
	ViewDashboard View = "dashboard" // map + noon report entry
	ViewVessels   View = "vessels"
	ViewCrew      View = "seafarers"
	ViewPMS       View = "pms"
	ViewCII       View = "cii"
	ViewWorkRest  View = "workrest"
	ViewCerts     View = "certs"
)

// Views lists every view in tab order. The first entry is the startup view.
var Views = []View{ViewDashboard, ViewVessels, ViewCrew, ViewPMS, ViewCII, ViewWorkRest, ViewCerts}

var viewCollections = map[View]models.Collection{
	ViewDashboard: models.Vessels,
	ViewVessels:   models.Vessels,
	ViewCrew:      models.Seafarers,
	ViewPMS:       models.MaintenanceJobs,
	ViewCII:       models.NoonReports,
	ViewWorkRest:  models.WorkHours,
	ViewCerts:     models.Certificates,
}

// ParseView validates a view identifier.
func ParseView(s string) (View, error) {
	v := View(s)
	if _, ok := viewCollections[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
	return v, nil
}

// Collection returns the record collection a view is built from.
func (v View) Collection() models.Collection {
	return viewCollections[v]
}

// Searchable reports whether the view shows the search box. The map and the
// CII chart are not tabular.
func (v View) Searchable() bool {
	return v != ViewDashboard && v != ViewCII
}
