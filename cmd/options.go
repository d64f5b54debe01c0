package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cityofphiladelphia/ais/internal/address"
	"github.com/cityofphiladelphia/ais/internal/config"
	"github.com/cityofphiladelphia/ais/internal/geojson"
)

// renderOptions are the per-invocation serializer settings, resolved from
// config and overridden by flags.
type renderOptions struct {
	geomType   string
	geomSource string
	srid       int
	page       int
	limit      int
	summary    bool
	metadata   map[string]any
	metaKeys   []string
}

func optionsFromFlags(cmd *cobra.Command, sc config.SerializerConfig) (renderOptions, error) {
	opts := renderOptions{
		geomType:   sc.GeomType,
		geomSource: sc.GeomSource,
		srid:       sc.SRID,
		metadata:   sc.Metadata,
		metaKeys:   sc.MetadataKeys,
	}

	flags := cmd.Flags()
	if flags.Changed("geom-type") {
		opts.geomType, _ = flags.GetString("geom-type")
		// A geom type switch invalidates the configured source.
		if !flags.Changed("geom-source") {
			opts.geomSource = ""
		}
	}
	if flags.Changed("geom-source") {
		opts.geomSource, _ = flags.GetString("geom-source")
	}
	if flags.Changed("srid") {
		opts.srid, _ = flags.GetInt("srid")
	}
	opts.page, _ = flags.GetInt("page")
	opts.limit, _ = flags.GetInt("limit")
	opts.summary, _ = flags.GetBool("summary")

	if opts.page < 1 {
		return renderOptions{}, eris.Errorf("render: page must be >= 1, got %d", opts.page)
	}
	if opts.limit < 0 {
		return renderOptions{}, eris.Errorf("render: limit must be >= 0, got %d", opts.limit)
	}
	return opts, nil
}

// metadataFor builds the document rendered ahead of the features.
func (o renderOptions) metadataFor(searchType string, query []string) *geojson.Document {
	doc := geojson.DocumentOf(
		geojson.Pair{Key: "search_type", Value: searchType},
		geojson.Pair{Key: "query", Value: strings.Join(query, ", ")},
	)
	geojson.Merge(doc, geojson.DocumentFromMap(o.metadata, o.metaKeys...))
	return doc
}

// paginate returns the [start, end) window of n records for the current page
// and the pagination document describing it. Without a limit every record is
// on page one.
func (o renderOptions) paginate(n int) (int, int, *geojson.Document) {
	size := o.limit
	if size == 0 {
		size = n
	}
	pageCount := 1
	if size > 0 {
		pageCount = (n + size - 1) / size
	}
	if pageCount == 0 {
		pageCount = 1
	}

	start := (o.page - 1) * size
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}

	return start, end, geojson.DocumentOf(
		geojson.Pair{Key: "page", Value: o.page},
		geojson.Pair{Key: "page_count", Value: pageCount},
		geojson.Pair{Key: "page_size", Value: end - start},
		geojson.Pair{Key: "total_size", Value: n},
	)
}

func (o renderOptions) addressConfig(metadata, pagination *geojson.Document) address.Config {
	return address.Config{
		GeomType:   address.GeomType(o.geomType),
		GeomSource: o.geomSource,
		SRID:       o.srid,
		Metadata:   metadata,
		Pagination: pagination,
	}
}

func (o renderOptions) rendererConfig(metadata, pagination *geojson.Document) geojson.RendererConfig {
	return geojson.RendererConfig{
		Metadata:   metadata,
		Pagination: pagination,
		SRID:       o.srid,
	}
}
