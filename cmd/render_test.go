package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/cityofphiladelphia/ais/internal/errs"
)

func fixturePath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "internal", "fixture", "testdata", "market.yaml"))
	require.NoError(t, err)
	return p
}

type feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   *struct {
		Type string `json:"type"`
	} `json:"geometry"`
}

type collection struct {
	Type      string    `json:"type"`
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
	PageSize  int       `json:"page_size"`
	TotalSize int       `json:"total_size"`
	Features  []feature `json:"features"`
}

func topLevelKeys(t *testing.T, out string) []string {
	t.Helper()
	om := orderedmap.New[string, json.RawMessage]()
	require.NoError(t, json.Unmarshal([]byte(out), om))
	var keys []string
	for p := om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

func TestRender_SingleAddress(t *testing.T) {
	out, err := execute(t, "render", "--fixtures", fixturePath(t), "--srid", "2272", "1234 MARKET ST")
	require.NoError(t, err)

	assert.Equal(t, []string{"search_type", "query", "type", "properties", "geometry"}, topLevelKeys(t, out))

	var f feature
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "centroid", f.Properties["geom_type"])
	assert.Equal(t, "pwd_parcel", f.Properties["geom_source"])
	assert.Equal(t, "CMX5", f.Properties["zoning"])
	assert.Equal(t, "9", f.Properties["police_district"])
	assert.Equal(t, "1", f.Properties["council_district"])
	assert.NotContains(t, f.Properties, "info_resident")
	require.NotNil(t, f.Geometry)
	assert.Equal(t, "Point", f.Geometry.Type)
}

func TestRender_AllAddresses(t *testing.T) {
	out, err := execute(t, "render", "--fixtures", fixturePath(t), "--srid", "2272")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"search_type", "query", "page", "page_count", "page_size", "total_size", "type", "features",
	}, topLevelKeys(t, out))

	var fc collection
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Equal(t, 1, fc.Page)
	assert.Equal(t, 2, fc.TotalSize)
	require.Len(t, fc.Features, 2)
	// Both addresses share geocode 11.
	for _, f := range fc.Features {
		assert.Equal(t, "9", f.Properties["police_district"])
	}
}

func TestRender_Pagination(t *testing.T) {
	out, err := execute(t, "render", "--fixtures", fixturePath(t), "--srid", "2272", "--limit", "1", "--page", "2")
	require.NoError(t, err)

	var fc collection
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Equal(t, 2, fc.Page)
	assert.Equal(t, 2, fc.PageCount)
	assert.Equal(t, 1, fc.PageSize)
	assert.Equal(t, 2, fc.TotalSize)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "1236-38 MARKET ST", fc.Features[0].Properties["street_address"])
}

func TestRender_PageOutOfRange(t *testing.T) {
	out, err := execute(t, "render", "--fixtures", fixturePath(t), "--srid", "2272", "--limit", "1", "--page", "9")
	require.NoError(t, err)

	var fc collection
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Empty(t, fc.Features)
	assert.Contains(t, out, `"features":[]`)
}

func TestRender_ParcelGeometry(t *testing.T) {
	out, err := execute(t, "render", "--fixtures", fixturePath(t), "--srid", "2272",
		"--geom-type", "parcel", "--geom-source", "pwd_parcel", "1234 MARKET ST")
	require.NoError(t, err)

	var f feature
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, "parcel", f.Properties["geom_type"])
	assert.Equal(t, "pwd_parcel", f.Properties["geom_source"])
	require.NotNil(t, f.Geometry)
	assert.Equal(t, "Polygon", f.Geometry.Type)
}

func TestRender_UnknownAddress(t *testing.T) {
	out, err := execute(t, "render", "--fixtures", fixturePath(t), "9 NOWHERE ST")
	require.NoError(t, err)

	var fc collection
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Equal(t, 0, fc.TotalSize)
	assert.Empty(t, fc.Features)
}

func TestRender_Summary(t *testing.T) {
	out, err := execute(t, "render", "--fixtures", fixturePath(t), "--summary", "1234 MARKET ST")
	require.NoError(t, err)

	var f feature
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "R", f.Properties["seg_side"])
	assert.Equal(t, "address_summary", mustTop(t, out, "search_type"))
	require.NotNil(t, f.Geometry)
	assert.Equal(t, "Point", f.Geometry.Type)
}

func mustTop(t *testing.T, out, key string) any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	return m[key]
}

func TestRender_InvalidGeomType(t *testing.T) {
	_, err := execute(t, "render", "--fixtures", fixturePath(t), "--geom-type", "bbox")
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestRender_ParcelWithoutSource(t *testing.T) {
	_, err := execute(t, "render", "--fixtures", fixturePath(t), "--geom-type", "parcel")
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestRender_InvalidPage(t *testing.T) {
	_, err := execute(t, "render", "--fixtures", fixturePath(t), "--page", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page must be >= 1")
}

func TestRender_MissingFixturesFlag(t *testing.T) {
	_, err := execute(t, "render")
	require.Error(t, err)
}

func TestRender_MissingFixtureFile(t *testing.T) {
	_, err := execute(t, "render", "--fixtures", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixture: read")
}
