package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
)

func TestIsConfiguration_Wrapped(t *testing.T) {
	err := eris.Wrap(NewConfigurationError("geom_type", errors.New("unknown value")), "address: new serializer")
	if !IsConfiguration(err) {
		t.Error("expected wrapped ConfigurationError to be detected")
	}
	if IsGeometry(err) || IsDataAccess(err) {
		t.Error("configuration error misclassified")
	}
}

func TestConfigurationError_Message(t *testing.T) {
	err := NewConfigurationError("geom_source", errors.New("required for parcel geometry"))
	want := "configuration: geom_source: required for parcel geometry"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	bare := NewConfigurationError("", errors.New("bad"))
	if bare.Error() != "configuration: bad" {
		t.Errorf("unexpected message %q", bare.Error())
	}
}

func TestGeometryError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("proj: unknown CRS")
	err := fmt.Errorf("project: %w", NewGeometryError(cause))
	if !IsGeometry(err) {
		t.Error("expected GeometryError in chain")
	}
	if !errors.Is(err, cause) {
		t.Error("expected underlying library error to stay reachable")
	}
}

func TestDataAccessError_Message(t *testing.T) {
	err := NewDataAccessError("service areas", errors.New("connection lost"))
	if err.Error() != "data access: service areas: connection lost" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !IsDataAccess(err) {
		t.Error("expected DataAccessError")
	}
}

func TestIsKinds_Nil(t *testing.T) {
	if IsConfiguration(nil) || IsGeometry(nil) || IsDataAccess(nil) {
		t.Error("nil must not match any kind")
	}
}
