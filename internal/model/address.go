package model

import "github.com/rotisserie/eris"

// Geometry is an EWKB-encoded geometry in the engine spatial reference.
type Geometry []byte

// Tag is a free-form key/value pair attached to an address.
type Tag struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Geocode is a derived point location for an address.
type Geocode struct {
	ID          int64    `json:"id"`
	GeocodeType string   `json:"geocode_type"`
	Primary     bool     `json:"primary"`
	Geom        Geometry `json:"-"`
}

// Parcel is a cadastral boundary associated with an address.
type Parcel struct {
	ID       int64    `json:"id"`
	ParcelID string   `json:"parcel_id"`
	Geom     Geometry `json:"-"`
}

// ServiceAreaPolygon is a district polygon, e.g. a police district, that can
// contain geocode points.
type ServiceAreaPolygon struct {
	ID      int64    `json:"id"`
	LayerID string   `json:"layer_id"`
	Value   string   `json:"value"`
	Geom    Geometry `json:"-"`
}

// Address is a normalized street address with its related geocodes, tags and
// parcel boundaries.
type Address struct {
	ID               int64  `json:"id"`
	StreetAddress    string `json:"street_address"`
	AddressLow       int    `json:"address_low"`
	AddressLowSuffix string `json:"address_low_suffix"`
	AddressLowFrac   string `json:"address_low_frac"`
	AddressHigh      *int   `json:"address_high"`
	StreetPredir     string `json:"street_predir"`
	StreetName       string `json:"street_name"`
	StreetSuffix     string `json:"street_suffix"`
	StreetPostdir    string `json:"street_postdir"`
	UnitType         string `json:"unit_type"`
	UnitNum          string `json:"unit_num"`
	StreetFull       string `json:"street_full"`
	ZipCode          string `json:"zip_code"`
	Zip4             string `json:"zip_4"`
	PWDParcelID      string `json:"pwd_parcel_id"`
	DORParcelID      string `json:"dor_parcel_id"`
	OPAAccountNum    string `json:"opa_account_num"`
	OPAOwners        string `json:"opa_owners"`
	OPAAddress       string `json:"opa_address"`

	Tags      []Tag     `json:"tags"`
	Geocodes  []Geocode `json:"geocodes"`
	PWDParcel *Parcel   `json:"pwd_parcel,omitempty"`
	DORParcel *Parcel   `json:"dor_parcel,omitempty"`
}

// PrimaryGeocode returns the geocode designated as primary, or nil.
func (a *Address) PrimaryGeocode() *Geocode {
	for i := range a.Geocodes {
		if a.Geocodes[i].Primary {
			return &a.Geocodes[i]
		}
	}
	return nil
}

// GeocodeByType returns the first geocode of the given type, or nil.
func (a *Address) GeocodeByType(geocodeType string) *Geocode {
	for i := range a.Geocodes {
		if a.Geocodes[i].GeocodeType == geocodeType {
			return &a.Geocodes[i]
		}
	}
	return nil
}

// ParcelSource names one of the parcel boundary relations on an Address.
type ParcelSource string

const (
	ParcelSourcePWD ParcelSource = "pwd_parcel"
	ParcelSourceDOR ParcelSource = "dor_parcel"
)

// AllParcelSources returns every known parcel relation name.
func AllParcelSources() []ParcelSource {
	return []ParcelSource{ParcelSourcePWD, ParcelSourceDOR}
}

// ParseParcelSource resolves a relation name to a ParcelSource.
func ParseParcelSource(name string) (ParcelSource, error) {
	for _, ps := range AllParcelSources() {
		if string(ps) == name {
			return ps, nil
		}
	}
	return "", eris.Errorf("model: unknown parcel relation %q", name)
}

// Parcel returns the parcel relation named by src, or nil when the address
// has no such parcel.
func (a *Address) Parcel(src ParcelSource) *Parcel {
	switch src {
	case ParcelSourcePWD:
		return a.PWDParcel
	case ParcelSourceDOR:
		return a.DORParcel
	default:
		return nil
	}
}

// GeocodeIDs returns the ids of every geocode attached to the address.
func (a *Address) GeocodeIDs() []int64 {
	ids := make([]int64, 0, len(a.Geocodes))
	for _, g := range a.Geocodes {
		ids = append(ids, g.ID)
	}
	return ids
}
