package geojson

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// DefaultSRID is the output spatial reference used when none is configured
// (WGS 84 longitude/latitude).
const DefaultSRID = 4326

// RendererConfig configures a Renderer. All fields are optional.
type RendererConfig struct {
	// Metadata entries are emitted first, in their own order.
	Metadata *Document
	// Pagination entries are emitted only for collections, after metadata.
	Pagination *Document
	// SRID is the output spatial reference for projected geometries.
	SRID int
}

// Renderer frames mapped documents as a Feature or FeatureCollection and
// encodes them as JSON.
type Renderer struct {
	metadata   *Document
	pagination *Document
	srid       int
}

// NewRenderer creates a Renderer from cfg.
func NewRenderer(cfg RendererConfig) *Renderer {
	srid := cfg.SRID
	if srid == 0 {
		srid = DefaultSRID
	}
	return &Renderer{
		metadata:   cfg.Metadata,
		pagination: cfg.Pagination,
		srid:       srid,
	}
}

// SRID returns the configured output spatial reference.
func (r *Renderer) SRID() int {
	return r.srid
}

// RenderOne renders a single feature document, prefixed by metadata.
func (r *Renderer) RenderOne(data *Document) (string, error) {
	final := NewDocument()
	Merge(final, r.metadata)
	Merge(final, data)
	return encode(final)
}

// RenderMany renders documents as a FeatureCollection, prefixed by metadata
// and pagination.
func (r *Renderer) RenderMany(data []*Document) (string, error) {
	if data == nil {
		data = []*Document{}
	}
	final := NewDocument()
	Merge(final, r.metadata)
	Merge(final, r.pagination)
	final.Set("type", "FeatureCollection")
	final.Set("features", data)
	return encode(final)
}

func encode(doc *Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", eris.Wrap(err, "geojson: encode document")
	}
	return string(b), nil
}
