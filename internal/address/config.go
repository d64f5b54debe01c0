package address

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/cityofphiladelphia/ais/internal/errs"
	"github.com/cityofphiladelphia/ais/internal/geojson"
	"github.com/cityofphiladelphia/ais/internal/model"
)

// GeomType selects which geometry an address feature carries.
type GeomType string

const (
	// GeomTypeCentroid uses the point of one of the address's geocodes.
	GeomTypeCentroid GeomType = "centroid"
	// GeomTypeParcel uses the boundary of a named parcel relation.
	GeomTypeParcel GeomType = "parcel"
)

// Config configures a Serializer.
type Config struct {
	// GeomType defaults to centroid.
	GeomType GeomType `json:"geom_type" validate:"omitempty,oneof=centroid parcel"`
	// GeomSource is an optional geocode type for centroid geometry, or the
	// required parcel relation name (pwd_parcel, dor_parcel) for parcel
	// geometry.
	GeomSource string `json:"geom_source" validate:"required_if=GeomType parcel"`
	// SRID is the output spatial reference; 0 means 4326.
	SRID int `json:"srid" validate:"gte=0"`

	Metadata   *geojson.Document `json:"-" validate:"-"`
	Pagination *geojson.Document `json:"-" validate:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// resolved is a validated Config.
type resolved struct {
	geomType   GeomType
	geomSource string
	parcel     model.ParcelSource
}

func (c Config) resolve() (resolved, error) {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return resolved{}, errs.NewConfigurationError(fe.Field(),
				eris.Errorf("address: invalid value %v (%s)", fe.Value(), fe.Tag()))
		}
		return resolved{}, errs.NewConfigurationError("", eris.Wrap(err, "address: validate config"))
	}

	r := resolved{geomType: c.GeomType, geomSource: c.GeomSource}
	if r.geomType == "" {
		r.geomType = GeomTypeCentroid
	}

	if r.geomType == GeomTypeParcel {
		ps, err := model.ParseParcelSource(c.GeomSource)
		if err != nil {
			return resolved{}, errs.NewConfigurationError("geom_source", err)
		}
		r.parcel = ps
	}
	return r, nil
}

func (c Config) rendererConfig() geojson.RendererConfig {
	return geojson.RendererConfig{
		Metadata:   c.Metadata,
		Pagination: c.Pagination,
		SRID:       c.SRID,
	}
}
