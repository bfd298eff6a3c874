package models

// Address is the structured breakdown returned by a reverse-geocoding
// provider. Every field is optional; an absent component is the empty string.
// The synonym fields (Road/Street/Highway, City/Town/Village) mirror the
// distinctions the providers themselves make and are collapsed by the
// classifier in a fixed priority order.
type Address struct {
	HouseNumber string // House or building number.
	Road        string // Primary street synonym.
	Street      string // Secondary street synonym.
	Highway     string // Tertiary street synonym.
	City        string // Primary locality synonym.
	Town        string // Secondary locality synonym.
	Village     string // Tertiary locality synonym.
	State       string // State, region or oblast.
	Postcode    string // Postal code.
}

// ReverseResult is the outcome of a single reverse-geocoding lookup.
// Found=false means the service had no address for the point; the
// remaining fields are meaningless in that case.
type ReverseResult struct {
	Found       bool    // Whether the provider resolved the point at all.
	Address     Address // Structured address breakdown.
	DisplayName string  // Free-text address as formatted by the provider.
}

// QualityTier classifies how complete a resolved address is.
type QualityTier string

const (
	// TierComplete means both a house number and a street were resolved.
	TierComplete QualityTier = "Complete Street Address"
	// TierStreetOnly means a street was resolved but no house number.
	TierStreetOnly QualityTier = "Street Only"
	// TierAreaOnly means only a free-text area description was resolved.
	TierAreaOnly QualityTier = "Area Only"
	// TierCoordinatesOnly means the provider had no address for the point.
	TierCoordinatesOnly QualityTier = "Coordinates Only"
	// TierError means the row could not be processed at all.
	TierError QualityTier = "Error"
)

// AddressOutcome is the final per-row result written back onto the table.
// Every input row ends with exactly one outcome, failures included.
type AddressOutcome struct {
	PhysicalAddress string      // Best address string the pipeline could produce.
	StreetName      string      // Street component alone, empty if unresolved.
	Quality         QualityTier // Completeness classification.
}

// BatchStats holds running counts of outcomes keyed by quality tier.
type BatchStats struct {
	CompleteAddress int `json:"complete_address"`
	StreetOnly      int `json:"street_only"`
	AreaOnly        int `json:"area_only"`
	CoordinatesOnly int `json:"coordinates_only"`
	Errors          int `json:"errors"`
	Total           int `json:"total"`
}

// Record bumps the counter matching the given tier. Total is fixed at batch
// start and is deliberately not touched here.
func (s *BatchStats) Record(tier QualityTier) {
	switch tier {
	case TierComplete:
		s.CompleteAddress++
	case TierStreetOnly:
		s.StreetOnly++
	case TierAreaOnly:
		s.AreaOnly++
	case TierCoordinatesOnly:
		s.CoordinatesOnly++
	case TierError:
		s.Errors++
	}
}
