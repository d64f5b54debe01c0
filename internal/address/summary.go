package address

import (
	"github.com/cityofphiladelphia/ais/internal/geojson"
	"github.com/cityofphiladelphia/ais/internal/model"
)

// SummarySerializer renders AddressSummary rows. Coordinates are copied as
// stored; nothing is reprojected or looked up.
type SummarySerializer struct {
	renderer *geojson.Renderer
}

// NewSummarySerializer creates a SummarySerializer.
func NewSummarySerializer(cfg geojson.RendererConfig) *SummarySerializer {
	return &SummarySerializer{renderer: geojson.NewRenderer(cfg)}
}

// Serialize renders a single summary as a Feature.
func (s *SummarySerializer) Serialize(summary *model.AddressSummary) (string, error) {
	return geojson.Serialize[*model.AddressSummary](s, s.renderer, summary)
}

// SerializeMany renders summaries as a FeatureCollection.
func (s *SummarySerializer) SerializeMany(summaries []model.AddressSummary) (string, error) {
	ptrs := make([]*model.AddressSummary, len(summaries))
	for i := range summaries {
		ptrs[i] = &summaries[i]
	}
	return geojson.SerializeMany[*model.AddressSummary](s, s.renderer, ptrs)
}

// ModelToData implements geojson.Mapper.
func (s *SummarySerializer) ModelToData(a *model.AddressSummary) (*geojson.Document, error) {
	properties := geojson.DocumentOf(
		geojson.Pair{Key: "street_address", Value: a.StreetAddress},
		geojson.Pair{Key: "address_low", Value: a.AddressLow},
		geojson.Pair{Key: "address_low_suffix", Value: a.AddressLowSuffix},
		geojson.Pair{Key: "address_low_frac", Value: a.AddressLowFrac},
		geojson.Pair{Key: "address_high", Value: intOrNil(a.AddressHigh)},
		geojson.Pair{Key: "street_predir", Value: a.StreetPredir},
		geojson.Pair{Key: "street_name", Value: a.StreetName},
		geojson.Pair{Key: "street_suffix", Value: a.StreetSuffix},
		geojson.Pair{Key: "street_postdir", Value: a.StreetPostdir},
		geojson.Pair{Key: "unit_type", Value: a.UnitType},
		geojson.Pair{Key: "unit_num", Value: a.UnitNum},
		geojson.Pair{Key: "street_full", Value: a.StreetFull},

		geojson.Pair{Key: "zip_code", Value: a.ZipCode},
		geojson.Pair{Key: "zip_4", Value: a.Zip4},

		geojson.Pair{Key: "seg_id", Value: intOrNil(a.SegID)},
		geojson.Pair{Key: "seg_side", Value: a.SegSide},
		geojson.Pair{Key: "pwd_parcel_id", Value: a.PWDParcelID},
		geojson.Pair{Key: "dor_parcel_id", Value: a.DORParcelID},
		geojson.Pair{Key: "opa_account_num", Value: a.OPAAccountNum},
		geojson.Pair{Key: "opa_owners", Value: a.OPAOwners},
		geojson.Pair{Key: "opa_address", Value: a.OPAAddress},
		geojson.Pair{Key: "info_residents", Value: a.InfoResidents},
		geojson.Pair{Key: "info_companies", Value: a.InfoCompanies},
		geojson.Pair{Key: "pwd_account_nums", Value: a.PWDAccountNums},
		geojson.Pair{Key: "li_address_key", Value: a.LIAddressKey},
		geojson.Pair{Key: "voters", Value: a.Voters},

		geojson.Pair{Key: "geocode_type", Value: a.GeocodeType},
		geojson.Pair{Key: "geocode_x", Value: a.GeocodeX},
		geojson.Pair{Key: "geocode_y", Value: a.GeocodeY},
	)

	return geojson.DocumentOf(
		geojson.Pair{Key: "type", Value: "Feature"},
		geojson.Pair{Key: "properties", Value: properties},
		geojson.Pair{Key: "geometry", Value: geojson.DocumentOf(
			geojson.Pair{Key: "type", Value: "Point"},
			geojson.Pair{Key: "coordinates", Value: []float64{a.GeocodeX, a.GeocodeY}},
		)},
	), nil
}
