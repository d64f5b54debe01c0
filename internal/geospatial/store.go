package geospatial

import (
	"context"

	"github.com/cityofphiladelphia/ais/internal/model"
)

// Store reads address records and their relations. It is read-only; records
// are loaded, serialized once and discarded.
type Store interface {
	// GetAddresses loads addresses by street address, in the requested order.
	// Unknown street addresses are skipped.
	GetAddresses(ctx context.Context, streetAddresses []string) ([]model.Address, error)

	// GetAddressSummaries loads summary rows by street address, in the
	// requested order.
	GetAddressSummaries(ctx context.Context, streetAddresses []string) ([]model.AddressSummary, error)
}

// DefaultGeocodePriority orders geocode types from most to least preferred
// when choosing an address's primary geocode.
var DefaultGeocodePriority = []string{"pwd_parcel", "dor_parcel", "true_range", "centerline"}

// MarkPrimary flags the highest-priority geocode in geocodes as primary and
// clears the flag on the rest. Types absent from priority are never primary.
func MarkPrimary(geocodes []model.Geocode, priority []string) {
	best, bestRank := -1, len(priority)
	for i := range geocodes {
		geocodes[i].Primary = false
		for rank, typ := range priority {
			if geocodes[i].GeocodeType == typ && rank < bestRank {
				best, bestRank = i, rank
				break
			}
		}
	}
	if best >= 0 {
		geocodes[best].Primary = true
	}
}
