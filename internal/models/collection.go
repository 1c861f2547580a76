package models

// Collection names a resource collection on the remote API.
type Collection string

const (
	Vessels         Collection = "vessels"
	Seafarers       Collection = "seafarers"
	MaintenanceJobs Collection = "maintenance-jobs"
	NoonReports     Collection = "noon-reports"
	Certificates    Collection = "certificates"
	WorkHours       Collection = "work-hours"
)

// Collections lists every collection fetched by a reload, in fetch order.
var Collections = []Collection{
	Vessels,
	Seafarers,
	MaintenanceJobs,
	NoonReports,
	Certificates,
	WorkHours,
}

// IsValidCollection checks if c is one of the known collections.
func IsValidCollection(c Collection) bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}
