package models

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// PositionOf reads the latitude/longitude fields of a vessel record. The
// second result is false when either coordinate is missing or not numeric.
func PositionOf(r Record) (Location, bool) {
	lat, ok := r.Get("latitude").Float()
	if !ok {
		return Location{}, false
	}
	lon, ok := r.Get("longitude").Float()
	if !ok {
		return Location{}, false
	}
	return Location{Lat: lat, Lon: lon}, true
}
