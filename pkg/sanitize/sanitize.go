// Package sanitize turns arbitrary Go values into JSON-safe trees of
// map[string]any, []any and scalars, ready for masking and encoding.
//
// Clone is a deep copy with explicit cycle detection: a value that refers
// back to one of its own ancestors is replaced by CircularMarker instead of
// recursing forever. Binary buffers become UTF-8 text, database object ids
// become their hex string, and values that know how to marshal themselves
// are rendered through their marshalers.
//
// If anything goes wrong while copying (a marshaler returns an error, or an
// accessor panics), Clone gives up and returns its input unchanged. Scrub
// never hands back the input: each value that fails to render is replaced
// by UnserializableMarker, so the result is always a fresh, acyclic tree
// that can be masked and encoded.
package sanitize

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// CircularMarker replaces a value that refers back to an ancestor.
	CircularMarker = "[Circular]"
	// TruncatedMarker replaces values nested deeper than MaxDepth.
	TruncatedMarker = "[Truncated]"
	// UnserializableMarker replaces a value whose marshaler or accessor fails.
	UnserializableMarker = "[Unserializable]"
	// MaxDepth bounds recursion on very deep, acyclic structures.
	MaxDepth = 64
)

type hexer interface {
	Hex() string
}

type hexStringer interface {
	HexString() string
}

// abort carries a marshaler failure up to Clone.
type abort struct {
	err error
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
}

type cloner struct {
	ancestors map[visitKey]struct{}
	// lenient replaces failing values with UnserializableMarker instead of
	// aborting the copy.
	lenient bool
}

// Clone returns a JSON-safe deep copy of v, or v itself when copying fails.
func Clone(v any) (out any) {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return s
	}

	defer func() {
		if r := recover(); r != nil {
			out = v
		}
	}()

	c := &cloner{ancestors: make(map[visitKey]struct{})}
	res, keep := c.value(reflect.ValueOf(v), 0)
	if !keep {
		return nil
	}
	return res
}

// Scrub returns a JSON-safe deep copy of v like Clone, except that a value
// which cannot be rendered becomes UnserializableMarker. The result never
// shares maps or slices with v.
func Scrub(v any) (out any) {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return s
	}

	defer func() {
		if r := recover(); r != nil {
			out = UnserializableMarker
		}
	}()

	c := &cloner{ancestors: make(map[visitKey]struct{}), lenient: true}
	res, keep := c.value(reflect.ValueOf(v), 0)
	if !keep {
		return nil
	}
	return res
}

// value copies rv. keep is false for values JSON cannot represent
// (functions, channels, complex numbers), which containers drop.
func (c *cloner) value(rv reflect.Value, depth int) (any, bool) {
	if !rv.IsValid() {
		return nil, true
	}
	if depth > MaxDepth {
		return TruncatedMarker, true
	}

	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, true
		}
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, false
	}

	if rv.CanInterface() {
		if out, ok := c.trySpecial(rv.Interface(), depth); ok {
			return out, true
		}
	}

	switch rv.Kind() {
	case reflect.Ptr:
		return c.enter(rv, func() any {
			out, _ := c.value(rv.Elem(), depth+1)
			return out
		}), true

	case reflect.Map:
		return c.enter(rv, func() any {
			return c.mapValue(rv, depth)
		}), true

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return text(rv.Bytes()), true
		}
		return c.enter(rv, func() any {
			return c.list(rv, depth)
		}), true

	case reflect.Array:
		return c.list(rv, depth), true

	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		c.fields(rv, out, depth)
		return out, true

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, true
		}
		return scalar(rv), true

	default:
		return scalar(rv), true
	}
}

// trySpecial calls special, turning a failure into UnserializableMarker
// when the cloner is lenient.
func (c *cloner) trySpecial(v any, depth int) (out any, ok bool) {
	if c.lenient {
		defer func() {
			if r := recover(); r != nil {
				out, ok = UnserializableMarker, true
			}
		}()
	}
	return c.special(v, depth)
}

// special handles values with a dedicated rendering. It reports false when
// v should be copied structurally.
func (c *cloner) special(v any, depth int) (any, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex(), true
	case hexStringer:
		return t.HexString(), true
	case hexer:
		return t.Hex(), true
	case json.Marshaler:
		raw, err := t.MarshalJSON()
		if err != nil {
			panic(abort{err: err})
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			panic(abort{err: err})
		}
		out, _ := c.value(reflect.ValueOf(decoded), depth+1)
		return out, true
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		if err != nil {
			panic(abort{err: err})
		}
		return string(b), true
	case error:
		return t.Error(), true
	}
	return nil, false
}

// enter runs fn with rv recorded as an ancestor, or returns CircularMarker
// if rv is already on the current path.
func (c *cloner) enter(rv reflect.Value, fn func() any) any {
	key := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
	if _, seen := c.ancestors[key]; seen {
		return CircularMarker
	}
	c.ancestors[key] = struct{}{}
	defer delete(c.ancestors, key)
	return fn()
}

func (c *cloner) mapValue(rv reflect.Value, depth int) any {
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		v, keep := c.value(iter.Value(), depth+1)
		if !keep {
			continue
		}
		out[mapKey(iter.Key())] = v
	}
	if b, ok := bufferShape(out); ok {
		return text(b)
	}
	return out
}

func (c *cloner) list(rv reflect.Value, depth int) []any {
	out := make([]any, rv.Len())
	for i := range out {
		v, keep := c.value(rv.Index(i), depth+1)
		if keep {
			out[i] = v
		}
	}
	return out
}

// fields copies the exported fields of a struct into out using encoding/json
// naming rules. Fields of embedded structs are promoted unless an outer field
// already claimed the name.
func (c *cloner) fields(rv reflect.Value, out map[string]any, depth int) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name, omitEmpty, skip := parseTag(f)
		if skip {
			continue
		}
		fv := rv.Field(i)

		if f.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Ptr {
				if inner.IsNil() || !f.IsExported() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				promoted := make(map[string]any)
				c.fields(inner, promoted, depth)
				for k, v := range promoted {
					if _, taken := out[k]; !taken {
						out[k] = v
					}
				}
				continue
			}
		}

		if !f.IsExported() {
			continue
		}
		if omitEmpty && isEmptyValue(fv) {
			continue
		}
		if name == "" {
			name = f.Name
		}
		v, keep := c.value(fv, depth+1)
		if !keep {
			continue
		}
		out[name] = v
	}
}

func parseTag(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if b, err := tm.MarshalText(); err == nil {
				return string(b)
			}
		}
		return fmt.Sprint(k.Interface())
	}
	return fmt.Sprint(k)
}

// scalar returns a bool, integer or string. Named types are reduced to
// their underlying predeclared type so masking sees plain strings.
func scalar(rv reflect.Value) any {
	if rv.CanInterface() && rv.Type().PkgPath() == "" {
		return rv.Interface()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return fmt.Sprint(rv)
}

// bufferShape recognizes {"type":"Buffer","data":[...bytes]}, the JSON form
// of a binary buffer produced by JavaScript clients.
func bufferShape(m map[string]any) ([]byte, bool) {
	if len(m) != 2 || m["type"] != "Buffer" {
		return nil, false
	}
	data, ok := m["data"].([]any)
	if !ok {
		return nil, false
	}
	b := make([]byte, len(data))
	for i, d := range data {
		n, ok := byteValue(d)
		if !ok {
			return nil, false
		}
		b[i] = n
	}
	return b, true
}

func byteValue(v any) (byte, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint8:
		return n, true
	default:
		return 0, false
	}
	if f < 0 || f > 255 || f != math.Trunc(f) {
		return 0, false
	}
	return byte(f), true
}

func text(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
