// Package errs defines the error kinds surfaced by the serialization layer.
// Callers (typically an HTTP layer) map them to user-facing responses.
package errs

import "errors"

// ConfigurationError reports an invalid serializer configuration, such as an
// unknown geometry type or a missing parcel relation name.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Err.Error()
	}
	return "configuration: " + e.Field + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError wraps err as a configuration error for field.
func NewConfigurationError(field string, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Err: err}
}

// GeometryError reports a malformed geometry or an unusable spatial reference.
// The reprojection library's own error stays reachable through Unwrap.
type GeometryError struct {
	Err error
}

func (e *GeometryError) Error() string {
	return "geometry: " + e.Err.Error()
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// NewGeometryError wraps err as a geometry error.
func NewGeometryError(err error) *GeometryError {
	return &GeometryError{Err: err}
}

// DataAccessError reports a failure in the external persistence layer.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return "data access: " + e.Op + ": " + e.Err.Error()
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// NewDataAccessError wraps err as a data access error raised during op.
func NewDataAccessError(op string, err error) *DataAccessError {
	return &DataAccessError{Op: op, Err: err}
}

// IsConfiguration reports whether err has a ConfigurationError in its chain.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsGeometry reports whether err has a GeometryError in its chain.
func IsGeometry(err error) bool {
	var ge *GeometryError
	return errors.As(err, &ge)
}

// IsDataAccess reports whether err has a DataAccessError in its chain.
func IsDataAccess(err error) bool {
	var de *DataAccessError
	return errors.As(err, &de)
}
