package models

import "fmt"

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
}

// String formats the point to six decimal places, roughly 0.11m of
// resolution, which is precise enough to disambiguate points without
// implying false accuracy.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}
