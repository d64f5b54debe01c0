// Package geometry reprojects stored geometries and converts them into GeoJSON
// geometry objects.
package geometry

import (
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-proj/v10"

	"github.com/cityofphiladelphia/ais/internal/errs"
	"github.com/cityofphiladelphia/ais/internal/geojson"
	"github.com/cityofphiladelphia/ais/internal/model"
)

// EngineSRID is the spatial reference geometries are stored in
// (NAD83 / Pennsylvania South, US feet).
const EngineSRID = 2272

// Projector reprojects EWKB geometries into an output spatial reference.
// Transformations are created on first use and reused; a Projector is safe
// for concurrent use.
type Projector struct {
	mu         sync.Mutex
	transforms map[[2]int]*proj.PJ
}

// NewProjector creates an empty Projector.
func NewProjector() *Projector {
	return &Projector{transforms: make(map[[2]int]*proj.PJ)}
}

// Project decodes g, reprojects it from fromSRID to toSRID and returns a
// document holding exactly "type" and "coordinates".
func (p *Projector) Project(g model.Geometry, fromSRID, toSRID int) (*geojson.Document, error) {
	if len(g) == 0 {
		return nil, errs.NewGeometryError(eris.New("empty ewkb input"))
	}

	t, err := ewkb.Unmarshal(g)
	if err != nil {
		return nil, errs.NewGeometryError(err)
	}
	if _, ok := t.(*geom.GeometryCollection); ok {
		return nil, errs.NewGeometryError(eris.New("geometry collections have no coordinates"))
	}

	if fromSRID != toSRID {
		if err := p.transform(t, fromSRID, toSRID); err != nil {
			return nil, err
		}
	}

	enc, err := geomjson.Encode(t)
	if err != nil {
		return nil, errs.NewGeometryError(err)
	}
	return geojson.DocumentOf(
		geojson.Pair{Key: "type", Value: enc.Type},
		geojson.Pair{Key: "coordinates", Value: enc.Coordinates},
	), nil
}

// transform rewrites t's coordinates in place.
func (p *Projector) transform(t geom.T, fromSRID, toSRID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pj, err := p.transformLocked(fromSRID, toSRID)
	if err != nil {
		return err
	}

	layout := t.Layout()
	if err := pj.ForwardFlatCoords(t.FlatCoords(), t.Stride(), layout.ZIndex(), layout.MIndex()); err != nil {
		return errs.NewGeometryError(err)
	}
	return nil
}

func (p *Projector) transformLocked(fromSRID, toSRID int) (*proj.PJ, error) {
	key := [2]int{fromSRID, toSRID}
	if pj, ok := p.transforms[key]; ok {
		return pj, nil
	}

	raw, err := proj.NewCRSToCRS(epsg(fromSRID), epsg(toSRID), nil)
	if err != nil {
		return nil, errs.NewGeometryError(err)
	}
	// Geographic CRSs default to lat/lon axis order; GeoJSON wants lon/lat.
	pj, err := raw.NormalizeForVisualization()
	raw.Destroy()
	if err != nil {
		return nil, errs.NewGeometryError(err)
	}

	p.transforms[key] = pj
	return pj, nil
}

// Close releases cached transformations.
func (p *Projector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, pj := range p.transforms {
		pj.Destroy()
		delete(p.transforms, key)
	}
}

func epsg(srid int) string {
	return fmt.Sprintf("EPSG:%d", srid)
}
