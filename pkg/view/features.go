package view

import (
	"fmt"
	"reflect"
	"strconv"
)

// MissingValue is the stringified stand-in for a feature a node does not carry.
const MissingValue = "<none>"

// Feature is one named primitive value.
type Feature struct {
	Name  string
	Value any
}

// Features is an ordered name → value mapping. Values are restricted to
// primitives (string, bool, int64, float64, nil); [Features.Set] normalizes
// other integer and float types.
//
// The zero value is an empty set ready to use.
type Features struct {
	list []Feature
}

// NewFeatures builds a Features from name/value pairs in order.
func NewFeatures(pairs ...Feature) Features {
	var f Features
	for _, p := range pairs {
		f.Set(p.Name, p.Value)
	}
	return f
}

// Len returns the number of features.
func (f Features) Len() int { return len(f.list) }

// Get returns the value named name and whether it is present.
func (f Features) Get(name string) (any, bool) {
	for _, kv := range f.list {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return nil, false
}

// Set stores v under name, replacing an existing value in place so the
// original insertion order is kept.
func (f *Features) Set(name string, v any) {
	v = normalize(v)
	for i := range f.list {
		if f.list[i].Name == name {
			f.list[i].Value = v
			return
		}
	}
	f.list = append(f.list, Feature{Name: name, Value: v})
}

// Names returns feature names in insertion order.
func (f Features) Names() []string {
	out := make([]string, len(f.list))
	for i, kv := range f.list {
		out[i] = kv.Name
	}
	return out
}

// All returns a copy of the ordered pairs.
func (f Features) All() []Feature {
	out := make([]Feature, len(f.list))
	copy(out, f.list)
	return out
}

// Lookup returns the stringified value named name, or MissingValue.
func (f Features) Lookup(name string) string {
	v, ok := f.Get(name)
	if !ok {
		return MissingValue
	}
	return Stringify(v)
}

// Clone returns an independent copy.
func (f Features) Clone() Features {
	return Features{list: f.All()}
}

// Stringify renders a primitive feature value. nil renders as "null" so it
// stays distinct from a missing feature.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// ValueEqual reports whether two feature values are equal after integer and
// float normalization. Types must match: int64(1) differs from "1".
func ValueEqual(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
