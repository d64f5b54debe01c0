package geojson

// Mapper converts a record into a feature document.
type Mapper[T any] interface {
	ModelToData(record T) (*Document, error)
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc[T any] func(record T) (*Document, error)

// ModelToData implements Mapper.
func (f MapperFunc[T]) ModelToData(record T) (*Document, error) {
	return f(record)
}

// Serialize maps a single record and renders it as a Feature.
func Serialize[T any](m Mapper[T], r *Renderer, record T) (string, error) {
	data, err := m.ModelToData(record)
	if err != nil {
		return "", err
	}
	return r.RenderOne(data)
}

// SerializeMany maps every record and renders them as a FeatureCollection.
// The first mapping error aborts the call; no partial output is produced.
func SerializeMany[T any](m Mapper[T], r *Renderer, records []T) (string, error) {
	data := make([]*Document, 0, len(records))
	for _, record := range records {
		doc, err := m.ModelToData(record)
		if err != nil {
			return "", err
		}
		data = append(data, doc)
	}
	return r.RenderMany(data)
}
