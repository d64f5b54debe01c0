// Package geojson renders key-ordered GeoJSON Feature and FeatureCollection
// documents.
package geojson

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is an insertion-ordered JSON object. Setting an existing key
// replaces its value but keeps its original position.
type Document = orderedmap.OrderedMap[string, any]

// Pair is a single key/value entry used to build a Document.
type Pair struct {
	Key   string
	Value any
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return orderedmap.New[string, any]()
}

// DocumentOf builds a Document from pairs in the given order.
func DocumentOf(pairs ...Pair) *Document {
	doc := orderedmap.New[string, any](len(pairs))
	for _, p := range pairs {
		doc.Set(p.Key, p.Value)
	}
	return doc
}

// DocumentFromMap builds a Document from an unordered map. Keys named in order
// come first, in that order; the rest follow sorted so the output is stable
// across runs.
func DocumentFromMap(m map[string]any, order ...string) *Document {
	if len(m) == 0 {
		return nil
	}
	doc := orderedmap.New[string, any](len(m))
	for _, k := range order {
		if v, ok := m[k]; ok {
			doc.Set(k, v)
		}
	}

	rest := make([]string, 0, len(m))
	for k := range m {
		if _, ok := doc.Get(k); !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		doc.Set(k, m[k])
	}
	return doc
}

// Merge appends the entries of src to dst in src's order.
func Merge(dst, src *Document) {
	if src == nil {
		return
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		dst.Set(pair.Key, pair.Value)
	}
}
