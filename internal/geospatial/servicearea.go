package geospatial

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cityofphiladelphia/ais/internal/db"
	"github.com/cityofphiladelphia/ais/internal/errs"
	"github.com/cityofphiladelphia/ais/internal/model"
)

// ServiceAreaIndex maps a geocode id to the service-area polygons that
// contain its point. It is built per serialization call and never shared.
type ServiceAreaIndex map[int64][]model.ServiceAreaPolygon

// NewServiceAreaIndex returns an index with an empty entry for every id.
func NewServiceAreaIndex(geocodeIDs []int64) ServiceAreaIndex {
	idx := make(ServiceAreaIndex, len(geocodeIDs))
	for _, id := range geocodeIDs {
		idx[id] = []model.ServiceAreaPolygon{}
	}
	return idx
}

// For returns the service areas attached to a geocode.
func (idx ServiceAreaIndex) For(geocodeID int64) []model.ServiceAreaPolygon {
	return idx[geocodeID]
}

// Size returns the total number of attached service areas.
func (idx ServiceAreaIndex) Size() int {
	n := 0
	for _, sas := range idx {
		n += len(sas)
	}
	return n
}

// ServiceAreaSource finds the service-area polygons containing each geocode.
type ServiceAreaSource interface {
	// ServiceAreasContaining returns an index with an entry for every
	// requested geocode id, empty when no polygon contains the point.
	ServiceAreasContaining(ctx context.Context, geocodeIDs []int64) (ServiceAreaIndex, error)
}

const serviceAreasContainingSQL = `
	SELECT g.id, sap.id, sap.layer_id, sap.value
	FROM service_area_polygon sap
	JOIN geocode g ON ST_Contains(sap.geom, g.geom)
	WHERE g.id = ANY($1)
	ORDER BY g.id, sap.id
`

// PostgresServiceAreas resolves containment with a single PostGIS query.
type PostgresServiceAreas struct {
	pool db.Pool
}

// NewPostgresServiceAreas creates a PostgresServiceAreas.
func NewPostgresServiceAreas(pool db.Pool) *PostgresServiceAreas {
	return &PostgresServiceAreas{pool: pool}
}

// ServiceAreasContaining implements ServiceAreaSource.
func (s *PostgresServiceAreas) ServiceAreasContaining(ctx context.Context, geocodeIDs []int64) (ServiceAreaIndex, error) {
	idx := NewServiceAreaIndex(geocodeIDs)
	if len(geocodeIDs) == 0 {
		return idx, nil
	}

	rows, err := s.pool.Query(ctx, serviceAreasContainingSQL, geocodeIDs)
	if err != nil {
		return nil, errs.NewDataAccessError("service areas", eris.Wrap(err, "geo: query service areas"))
	}
	defer rows.Close()

	for rows.Next() {
		var geocodeID int64
		var sa model.ServiceAreaPolygon
		if err := rows.Scan(&geocodeID, &sa.ID, &sa.LayerID, &sa.Value); err != nil {
			return nil, errs.NewDataAccessError("service areas", eris.Wrap(err, "geo: scan service area row"))
		}
		if _, ok := idx[geocodeID]; !ok {
			continue
		}
		idx[geocodeID] = append(idx[geocodeID], sa)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDataAccessError("service areas", eris.Wrap(err, "geo: iterate service area rows"))
	}

	zap.L().Debug("geo: service areas resolved",
		zap.Int("geocodes", len(geocodeIDs)),
		zap.Int("service_areas", idx.Size()),
	)
	return idx, nil
}

// StaticServiceAreas serves precomputed containment results, keyed by
// geocode id. It backs offline rendering from fixture files.
type StaticServiceAreas map[int64][]model.ServiceAreaPolygon

// ServiceAreasContaining implements ServiceAreaSource.
func (s StaticServiceAreas) ServiceAreasContaining(_ context.Context, geocodeIDs []int64) (ServiceAreaIndex, error) {
	idx := NewServiceAreaIndex(geocodeIDs)
	for _, id := range geocodeIDs {
		idx[id] = append(idx[id], s[id]...)
	}
	return idx, nil
}
