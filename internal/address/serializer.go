// Package address serializes address records as GeoJSON features.
package address

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cityofphiladelphia/ais/internal/geojson"
	"github.com/cityofphiladelphia/ais/internal/geometry"
	"github.com/cityofphiladelphia/ais/internal/geospatial"
	"github.com/cityofphiladelphia/ais/internal/model"
)

// excludedTags are rendered through dedicated fields elsewhere and never
// merged into feature properties.
var excludedTags = map[string]bool{
	"info_resident": true,
	"info_company":  true,
	"voter_name":    true,
}

// Projector reprojects a stored geometry into a GeoJSON geometry document.
type Projector interface {
	Project(g model.Geometry, fromSRID, toSRID int) (*geojson.Document, error)
}

// Serializer renders full address records, including tags and the service
// areas containing the chosen geocode.
type Serializer struct {
	cfg       resolved
	renderer  *geojson.Renderer
	projector Projector
	areas     geospatial.ServiceAreaSource
}

// NewSerializer validates cfg and creates a Serializer. Invalid geometry
// settings fail here rather than during serialization.
func NewSerializer(cfg Config, projector Projector, areas geospatial.ServiceAreaSource) (*Serializer, error) {
	r, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	return &Serializer{
		cfg:       r,
		renderer:  geojson.NewRenderer(cfg.rendererConfig()),
		projector: projector,
		areas:     areas,
	}, nil
}

// Serialize renders a single address as a Feature.
func (s *Serializer) Serialize(ctx context.Context, address *model.Address) (string, error) {
	idx, err := s.AttachServiceAreas(ctx, []*model.Address{address})
	if err != nil {
		return "", err
	}
	return geojson.Serialize[*model.Address](s.mapper(idx), s.renderer, address)
}

// SerializeMany renders addresses as a FeatureCollection. Service areas for
// every geocode of every address are resolved with one lookup.
func (s *Serializer) SerializeMany(ctx context.Context, addresses []model.Address) (string, error) {
	ptrs := make([]*model.Address, len(addresses))
	for i := range addresses {
		ptrs[i] = &addresses[i]
	}

	idx, err := s.AttachServiceAreas(ctx, ptrs)
	if err != nil {
		return "", err
	}
	return geojson.SerializeMany[*model.Address](s.mapper(idx), s.renderer, ptrs)
}

// AttachServiceAreas resolves the service areas for all geocodes of
// addresses. The result is scoped to the caller; nothing is written onto the
// records, so concurrent calls over shared records are safe.
func (s *Serializer) AttachServiceAreas(ctx context.Context, addresses []*model.Address) (geospatial.ServiceAreaIndex, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, a := range addresses {
		for _, id := range a.GeocodeIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	callID := uuid.NewString()
	zap.L().Debug("address: attaching service areas",
		zap.String("call_id", callID),
		zap.Int("addresses", len(addresses)),
		zap.Int("geocodes", len(ids)),
	)

	if len(ids) == 0 || s.areas == nil {
		return geospatial.NewServiceAreaIndex(ids), nil
	}

	idx, err := s.areas.ServiceAreasContaining(ctx, ids)
	if err != nil {
		zap.L().Debug("address: service area lookup failed", zap.String("call_id", callID), zap.Error(err))
		return nil, err
	}
	return idx, nil
}

// ModelToData maps address to a feature document using idx for service
// areas. A nil idx maps no service areas.
func (s *Serializer) ModelToData(address *model.Address, idx geospatial.ServiceAreaIndex) (*geojson.Document, error) {
	return s.mapper(idx).ModelToData(address)
}

func (s *Serializer) mapper(idx geospatial.ServiceAreaIndex) featureMapper {
	return featureMapper{s: s, idx: idx}
}

// featureMapper binds a Serializer to the service areas of one call.
type featureMapper struct {
	s   *Serializer
	idx geospatial.ServiceAreaIndex
}

// ModelToData implements geojson.Mapper.
func (m featureMapper) ModelToData(a *model.Address) (*geojson.Document, error) {
	cfg := m.s.cfg

	var (
		geocode    *model.Geocode
		relGeom    model.Geometry
		hasRel     bool
		geomSource any
	)
	switch cfg.geomType {
	case GeomTypeParcel:
		geomSource = string(cfg.parcel)
		if p := a.Parcel(cfg.parcel); p != nil {
			relGeom, hasRel = p.Geom, true
		}
	default:
		if cfg.geomSource != "" {
			geocode = a.GeocodeByType(cfg.geomSource)
		} else {
			geocode = a.PrimaryGeocode()
		}
		if geocode != nil {
			geomSource = geocode.GeocodeType
			relGeom, hasRel = geocode.Geom, true
		} else {
			geomSource = nullIfEmpty(cfg.geomSource)
		}
	}

	var geometryData any
	if hasRel {
		doc, err := m.s.projector.Project(relGeom, geometry.EngineSRID, m.s.renderer.SRID())
		if err != nil {
			return nil, err
		}
		geometryData = doc
	}

	tags := geojson.NewDocument()
	for _, tag := range a.Tags {
		if excludedTags[tag.Key] {
			continue
		}
		tags.Set(tag.Key, tag.Value)
	}

	serviceAreas := geojson.NewDocument()
	if geocode != nil {
		for _, sa := range m.idx.For(geocode.ID) {
			serviceAreas.Set(sa.LayerID, sa.Value)
		}
	}

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

		geojson.Pair{Key: "zip_code", Value: nullIfEmpty(a.ZipCode)},
		geojson.Pair{Key: "zip_4", Value: nullIfEmpty(a.Zip4)},

		geojson.Pair{Key: "pwd_parcel_id", Value: nullIfEmpty(a.PWDParcelID)},
		geojson.Pair{Key: "dor_parcel_id", Value: nullIfEmpty(a.DORParcelID)},

		geojson.Pair{Key: "opa_account_num", Value: nullIfEmpty(a.OPAAccountNum)},
		geojson.Pair{Key: "opa_owners", Value: nullIfEmpty(a.OPAOwners)},
		geojson.Pair{Key: "opa_address", Value: nullIfEmpty(a.OPAAddress)},

		geojson.Pair{Key: "geom_type", Value: string(cfg.geomType)},
		geojson.Pair{Key: "geom_source", Value: geomSource},
	)
	geojson.Merge(properties, tags)
	geojson.Merge(properties, serviceAreas)

	return geojson.DocumentOf(
		geojson.Pair{Key: "type", Value: "Feature"},
		geojson.Pair{Key: "properties", Value: properties},
		geojson.Pair{Key: "geometry", Value: geometryData},
	), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
