// Package classifier turns raw reverse-geocoding results into per-row
// address outcomes with a quality tier. Everything here is a pure function:
// no I/O, no state, same input always gives the same outcome.
package classifier

import (
	"strconv"
	"strings"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// InvalidCoordinates is the sentinel address written for rows whose
// latitude or longitude is missing or non-numeric. Such rows are classified
// directly and never reach the geocoding adapter.
const InvalidCoordinates = "Invalid coordinates"

// partDelimiter joins address components in the built address strings.
const partDelimiter = ", "

// Classify assigns a quality tier and builds the address strings for one
// resolved lookup. point is the coordinate pair that was looked up; locality
// is an optional label carried by the input row, used only to suffix the
// coordinate fallback when the service had no address for the point.
//
// Decision policy, in priority order: not found, complete street address,
// street only, area only.
func Classify(result *models.ReverseResult, point models.Coordinates, locality string) models.AddressOutcome {
	if result == nil || !result.Found {
		address := point.String()
		if locality != "" {
			address += partDelimiter + locality
		}
		return models.AddressOutcome{
			PhysicalAddress: address,
			Quality:         models.TierCoordinatesOnly,
		}
	}

	street := streetName(result.Address)
	city := cityName(result.Address)

	switch {
	case result.Address.HouseNumber != "" && street != "":
		streetLine := result.Address.HouseNumber + " " + street
		return models.AddressOutcome{
			PhysicalAddress: joinParts(streetLine, city, result.Address.State, result.Address.Postcode),
			StreetName:      streetLine,
			Quality:         models.TierComplete,
		}
	case street != "":
		return models.AddressOutcome{
			PhysicalAddress: joinParts(street, city, result.Address.State, result.Address.Postcode),
			StreetName:      street,
			Quality:         models.TierStreetOnly,
		}
	default:
		return models.AddressOutcome{
			PhysicalAddress: result.DisplayName,
			Quality:         models.TierAreaOnly,
		}
	}
}

// Invalid is the outcome for a row whose coordinates are missing or
// malformed.
func Invalid() models.AddressOutcome {
	return models.AddressOutcome{
		PhysicalAddress: InvalidCoordinates,
		Quality:         models.TierError,
	}
}

// Failed is the outcome for a row that hit an unexpected failure after its
// coordinates were read. The raw coordinate pair is kept as a best-effort
// address so the row still carries something usable.
func Failed(point models.Coordinates) models.AddressOutcome {
	return models.AddressOutcome{
		PhysicalAddress: strconv.FormatFloat(point.Latitude, 'f', -1, 64) +
			partDelimiter + strconv.FormatFloat(point.Longitude, 'f', -1, 64),
		Quality: models.TierError,
	}
}

// streetName collapses the street synonyms in fixed priority: road, then
// street, then highway. First non-empty wins.
func streetName(addr models.Address) string {
	return firstNonEmpty(addr.Road, addr.Street, addr.Highway)
}

// cityName collapses the locality synonyms in fixed priority: city, then
// town, then village.
func cityName(addr models.Address) string {
	return firstNonEmpty(addr.City, addr.Town, addr.Village)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// joinParts builds the physical address from its components, appending each
// only if non-empty.
func joinParts(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, partDelimiter)
}
