package geojson

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// keysOf decodes a JSON object and returns its top-level keys in order.
func keysOf(t *testing.T, s string) []string {
	t.Helper()
	om := orderedmap.New[string, json.RawMessage]()
	require.NoError(t, json.Unmarshal([]byte(s), om))
	keys := make([]string, 0, om.Len())
	for p := om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

func feature(name string) *Document {
	return DocumentOf(
		Pair{"type", "Feature"},
		Pair{"properties", DocumentOf(Pair{"street_address", name})},
		Pair{"geometry", nil},
	)
}

func TestNewRenderer_DefaultSRID(t *testing.T) {
	assert.Equal(t, DefaultSRID, NewRenderer(RendererConfig{}).SRID())
	assert.Equal(t, 2272, NewRenderer(RendererConfig{SRID: 2272}).SRID())
}

func TestRenderOne_Plain(t *testing.T) {
	out, err := NewRenderer(RendererConfig{}).RenderOne(feature("1234 MARKET ST"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Feature","properties":{"street_address":"1234 MARKET ST"},"geometry":null}`, out)
}

func TestRenderOne_MetadataFirstAndNoPagination(t *testing.T) {
	r := NewRenderer(RendererConfig{
		Metadata:   DocumentOf(Pair{"search_type", "address"}, Pair{"query", "1234 market"}),
		Pagination: DocumentOf(Pair{"page", 1}),
	})
	out, err := r.RenderOne(feature("1234 MARKET ST"))
	require.NoError(t, err)
	assert.Equal(t, []string{"search_type", "query", "type", "properties", "geometry"}, keysOf(t, out))
}

func TestRenderMany_FramingOrder(t *testing.T) {
	r := NewRenderer(RendererConfig{
		Metadata:   DocumentOf(Pair{"search_type", "address"}),
		Pagination: DocumentOf(Pair{"page", 2}, Pair{"page_count", 5}, Pair{"total_size", 47}),
	})
	out, err := r.RenderMany([]*Document{feature("A"), feature("B")})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"search_type", "page", "page_count", "total_size", "type", "features"},
		keysOf(t, out))

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 2)
	assert.Equal(t, "B", decoded.Features[1].Properties["street_address"])
}

func TestRenderMany_Empty(t *testing.T) {
	out, err := NewRenderer(RendererConfig{}).RenderMany(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"FeatureCollection","features":[]}`, out)

	r := NewRenderer(RendererConfig{
		Metadata:   DocumentOf(Pair{"search_type", "block"}),
		Pagination: DocumentOf(Pair{"page", 1}),
	})
	out, err = r.RenderMany([]*Document{})
	require.NoError(t, err)
	assert.Equal(t, `{"search_type":"block","page":1,"type":"FeatureCollection","features":[]}`, out)
}

func TestRenderMany_MetadataTypeIsOverriddenInPlace(t *testing.T) {
	r := NewRenderer(RendererConfig{
		Metadata: DocumentOf(Pair{"type", "ignored"}, Pair{"version", "1.0"}),
	})
	out, err := r.RenderMany(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"FeatureCollection","version":"1.0","features":[]}`, out)
}

func TestRenderOne_Idempotent(t *testing.T) {
	r := NewRenderer(RendererConfig{Metadata: DocumentOf(Pair{"a", 1})})
	doc := feature("X")
	first, err := r.RenderOne(doc)
	require.NoError(t, err)
	second, err := r.RenderOne(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderOne_EncodeError(t *testing.T) {
	doc := DocumentOf(Pair{"bad", make(chan int)})
	_, err := NewRenderer(RendererConfig{}).RenderOne(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geojson: encode document")
}

func TestSerialize_UsesMapper(t *testing.T) {
	m := MapperFunc[string](func(s string) (*Document, error) { return feature(s), nil })
	r := NewRenderer(RendererConfig{})

	one, err := Serialize[string](m, r, "1 N BROAD ST")
	require.NoError(t, err)
	assert.Contains(t, one, `"street_address":"1 N BROAD ST"`)

	many, err := SerializeMany[string](m, r, []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"type", "features"}, keysOf(t, many))
}

func TestSerializeMany_AbortsOnError(t *testing.T) {
	boom := errors.New("boom")
	m := MapperFunc[string](func(s string) (*Document, error) {
		if s == "bad" {
			return nil, boom
		}
		return feature(s), nil
	})
	out, err := SerializeMany[string](m, NewRenderer(RendererConfig{}), []string{"ok", "bad", "ok"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out)
}

func docKeys(doc *Document) []string {
	var keys []string
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func TestDocumentHelpers(t *testing.T) {
	doc := DocumentOf(Pair{"b", 1}, Pair{"a", 2})
	Merge(doc, DocumentOf(Pair{"c", 3}, Pair{"b", 4}))
	assert.Equal(t, []string{"b", "a", "c"}, docKeys(doc))
	v, _ := doc.Get("b")
	assert.Equal(t, 4, v)

	Merge(doc, nil)
	assert.Equal(t, 3, doc.Len())

	fromMap := DocumentFromMap(map[string]any{"z": 1, "m": 2, "a": 3})
	assert.Equal(t, []string{"a", "m", "z"}, docKeys(fromMap))
	assert.Nil(t, DocumentFromMap(nil))
}

func TestDocumentFromMap_KeepsGivenOrder(t *testing.T) {
	m := map[string]any{"source": "ais", "api_version": "2", "contact": "x", "build": 7}
	doc := DocumentFromMap(m, "source", "missing", "api_version")
	assert.Equal(t, []string{"source", "api_version", "build", "contact"}, docKeys(doc))
	v, _ := doc.Get("build")
	assert.Equal(t, 7, v)
}

func TestRenderOne_CompactEncoding(t *testing.T) {
	f := DocumentOf(
		Pair{"type", "Feature"},
		Pair{"properties", DocumentOf(Pair{"opa_owners", "AT&T <PEÑA>"}, Pair{"unit_num", 2})},
		Pair{"geometry", nil},
	)
	out, err := NewRenderer(RendererConfig{}).RenderOne(f)
	require.NoError(t, err)
	// No separator spaces; HTML characters are escaped, other non-ASCII stays UTF-8.
	assert.Equal(t, `{"type":"Feature","properties":{"opa_owners":"AT\u0026T \u003cPEÑA\u003e","unit_num":2},"geometry":null}`, out)
}
