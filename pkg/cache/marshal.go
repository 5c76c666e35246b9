package cache

import (
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v3"
)

// Marshaler converts values to and from bytes for backends that store
// bytes, such as Redis.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON encodes values as JSON. It is the default Redis marshaler.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// YAML encodes values as YAML, keeping cached documents readable.
type YAML[V any] struct{}

func (YAML[V]) Marshal(v V) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (YAML[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := yaml.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}
