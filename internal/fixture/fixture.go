// Package fixture loads address records from YAML files for offline
// rendering. Geometries are written as WKT in the engine spatial reference.
package fixture

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkt"
	"gopkg.in/yaml.v3"

	"github.com/cityofphiladelphia/ais/internal/geospatial"
	"github.com/cityofphiladelphia/ais/internal/model"
)

// File is the on-disk layout of a fixture file.
type File struct {
	Addresses    []Address              `yaml:"addresses"`
	Summaries    []model.AddressSummary `yaml:"summaries"`
	ServiceAreas []ServiceArea          `yaml:"service_areas"`
}

// Address mirrors model.Address with WKT geometries.
type Address struct {
	ID               int64       `yaml:"id"`
	StreetAddress    string      `yaml:"street_address"`
	AddressLow       int         `yaml:"address_low"`
	AddressLowSuffix string      `yaml:"address_low_suffix"`
	AddressLowFrac   string      `yaml:"address_low_frac"`
	AddressHigh      *int        `yaml:"address_high"`
	StreetPredir     string      `yaml:"street_predir"`
	StreetName       string      `yaml:"street_name"`
	StreetSuffix     string      `yaml:"street_suffix"`
	StreetPostdir    string      `yaml:"street_postdir"`
	UnitType         string      `yaml:"unit_type"`
	UnitNum          string      `yaml:"unit_num"`
	StreetFull       string      `yaml:"street_full"`
	ZipCode          string      `yaml:"zip_code"`
	Zip4             string      `yaml:"zip_4"`
	PWDParcelID      string      `yaml:"pwd_parcel_id"`
	DORParcelID      string      `yaml:"dor_parcel_id"`
	OPAAccountNum    string      `yaml:"opa_account_num"`
	OPAOwners        string      `yaml:"opa_owners"`
	OPAAddress       string      `yaml:"opa_address"`
	Tags             []model.Tag `yaml:"tags"`
	Geocodes         []Geocode   `yaml:"geocodes"`
	PWDParcel        *Parcel     `yaml:"pwd_parcel"`
	DORParcel        *Parcel     `yaml:"dor_parcel"`
}

// Geocode mirrors model.Geocode.
type Geocode struct {
	ID          int64  `yaml:"id"`
	GeocodeType string `yaml:"geocode_type"`
	Primary     bool   `yaml:"primary"`
	WKT         string `yaml:"wkt"`
}

// Parcel mirrors model.Parcel.
type Parcel struct {
	ID       int64  `yaml:"id"`
	ParcelID string `yaml:"parcel_id"`
	WKT      string `yaml:"wkt"`
}

// ServiceArea is a precomputed containment result: the polygon identified by
// ID contains the point of geocode GeocodeID.
type ServiceArea struct {
	GeocodeID int64  `yaml:"geocode_id"`
	ID        int64  `yaml:"id"`
	LayerID   string `yaml:"layer_id"`
	Value     string `yaml:"value"`
}

// Set is a decoded fixture file.
type Set struct {
	Addresses    []model.Address
	Summaries    []model.AddressSummary
	ServiceAreas geospatial.StaticServiceAreas
}

// Load reads and decodes the fixture file at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: read %s", path)
	}
	return Parse(data)
}

// Parse decodes fixture YAML.
func Parse(data []byte) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "fixture: parse yaml")
	}

	set := &Set{
		Addresses:    make([]model.Address, 0, len(f.Addresses)),
		Summaries:    f.Summaries,
		ServiceAreas: make(geospatial.StaticServiceAreas),
	}
	for i, a := range f.Addresses {
		addr, err := a.toModel()
		if err != nil {
			return nil, eris.Wrapf(err, "fixture: address %d (%s)", i, a.StreetAddress)
		}
		set.Addresses = append(set.Addresses, addr)
	}
	for _, sa := range f.ServiceAreas {
		set.ServiceAreas[sa.GeocodeID] = append(set.ServiceAreas[sa.GeocodeID], model.ServiceAreaPolygon{
			ID:      sa.ID,
			LayerID: sa.LayerID,
			Value:   sa.Value,
		})
	}
	return set, nil
}

// Find returns the addresses matching streetAddresses, in request order.
// Unknown addresses are skipped.
func (s *Set) Find(streetAddresses []string) []model.Address {
	byStreet := make(map[string]int, len(s.Addresses))
	for i := range s.Addresses {
		byStreet[s.Addresses[i].StreetAddress] = i
	}
	var out []model.Address
	for _, street := range streetAddresses {
		if i, ok := byStreet[street]; ok {
			out = append(out, s.Addresses[i])
		}
	}
	return out
}

func (a Address) toModel() (model.Address, error) {
	m := model.Address{
		ID:               a.ID,
		StreetAddress:    a.StreetAddress,
		AddressLow:       a.AddressLow,
		AddressLowSuffix: a.AddressLowSuffix,
		AddressLowFrac:   a.AddressLowFrac,
		AddressHigh:      a.AddressHigh,
		StreetPredir:     a.StreetPredir,
		StreetName:       a.StreetName,
		StreetSuffix:     a.StreetSuffix,
		StreetPostdir:    a.StreetPostdir,
		UnitType:         a.UnitType,
		UnitNum:          a.UnitNum,
		StreetFull:       a.StreetFull,
		ZipCode:          a.ZipCode,
		Zip4:             a.Zip4,
		PWDParcelID:      a.PWDParcelID,
		DORParcelID:      a.DORParcelID,
		OPAAccountNum:    a.OPAAccountNum,
		OPAOwners:        a.OPAOwners,
		OPAAddress:       a.OPAAddress,
		Tags:             a.Tags,
	}

	for _, g := range a.Geocodes {
		b, err := ParseWKT(g.WKT)
		if err != nil {
			return model.Address{}, eris.Wrapf(err, "fixture: geocode %d", g.ID)
		}
		m.Geocodes = append(m.Geocodes, model.Geocode{
			ID:          g.ID,
			GeocodeType: g.GeocodeType,
			Primary:     g.Primary,
			Geom:        b,
		})
	}

	var err error
	if m.PWDParcel, err = a.PWDParcel.toModel(); err != nil {
		return model.Address{}, err
	}
	if m.DORParcel, err = a.DORParcel.toModel(); err != nil {
		return model.Address{}, err
	}
	return m, nil
}

func (p *Parcel) toModel() (*model.Parcel, error) {
	if p == nil {
		return nil, nil
	}
	b, err := ParseWKT(p.WKT)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: parcel %s", p.ParcelID)
	}
	return &model.Parcel{ID: p.ID, ParcelID: p.ParcelID, Geom: b}, nil
}

// ParseWKT converts WKT to EWKB. An empty string yields no geometry.
func ParseWKT(s string) (model.Geometry, error) {
	if s == "" {
		return nil, nil
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "fixture: parse wkt")
	}
	b, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "fixture: encode ewkb")
	}
	return b, nil
}
