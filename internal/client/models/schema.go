package models

import (
	"encoding/json"
	"fmt"
)

// Schema translates one entity between its Go type and a versioned wire
// representation. Caches and the dev backend only talk JSON through a
// Schema, so a backend rename is absorbed here.
type Schema[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
	DecodeList(data []byte) ([]T, error)
	ID(v T) int
}

// jsonSchema maps T to the JSON-tagged wire struct W.
type jsonSchema[T, W any] struct {
	name     string
	toWire   func(T) W
	fromWire func(W) (T, error)
	id       func(T) int
}

func (s jsonSchema[T, W]) Encode(v T) ([]byte, error) {
	b, err := json.Marshal(s.toWire(v))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.name, err)
	}
	return b, nil
}

func (s jsonSchema[T, W]) Decode(data []byte) (T, error) {
	var w W
	if err := json.Unmarshal(data, &w); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", s.name, err)
	}
	v, err := s.fromWire(w)
	if err != nil {
		return v, fmt.Errorf("decode %s: %w", s.name, err)
	}
	return v, nil
}

// DecodeList decodes a JSON array. A null body decodes to an empty list.
func (s jsonSchema[T, W]) DecodeList(data []byte) ([]T, error) {
	var ws []W
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", s.name, err)
	}
	out := make([]T, 0, len(ws))
	for i, w := range ws {
		v, err := s.fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("decode %s list[%d]: %w", s.name, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s jsonSchema[T, W]) ID(v T) int {
	return s.id(v)
}
