package sheetrt

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the reaction to malformed input.
type Mode int

const (
	// Strict aborts a struct on the first problem.
	Strict Mode = iota + 1
	// Lenient skips problems and keeps defaults.
	Lenient
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrDecode is the sentinel wrapped by every DecodeError.
var ErrDecode = errors.New("decode")

// DecodeError locates a decoding problem by its field path.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrDecode, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %s", ErrDecode, e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// Decodable is implemented by generated row and struct types.
type Decodable interface {
	// Decode fills the receiver from a parsed JSON value and reports
	// success. Under Strict a false result leaves the receiver unchanged.
	Decode(d *Decoder, v any) bool
}

// Decoder carries the mode and the problems seen while decoding.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	Mode Mode

	path []string
	err  *DecodeError
	// Skipped collects problems ignored under Lenient.
	Skipped []*DecodeError
}

// NewDecoder returns a Decoder for mode.
func NewDecoder(mode Mode) *Decoder {
	return &Decoder{Mode: mode}
}

// Err returns the first problem that failed a Strict decode, or nil.
func (d *Decoder) Err() error {
	if d.err == nil {
		return nil
	}

	return d.err
}

// Object asserts that v is a JSON object.
func (d *Decoder) Object(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, d.Fail("expected object, got %s", describe(v))
	}

	return obj, true
}

// Fail records a problem at the current path and returns false, so
// converters can `return d.Fail(...)`.
func (d *Decoder) Fail(format string, args ...any) bool {
	e := &DecodeError{Path: strings.Join(d.path, "."), Reason: fmt.Sprintf(format, args...)}

	if d.Mode == Lenient {
		d.Skipped = append(d.Skipped, e)
	} else if d.err == nil {
		d.err = e
	}

	return false
}

func (d *Decoder) push(elem string) {
	d.path = append(d.path, elem)
}

func (d *Decoder) pop() {
	d.path = d.path[:len(d.path)-1]
}

// Field decodes obj[key] into dst with conv.
//
// A missing key is an error only for required fields under Strict; null
// counts as missing for optional fields and goes to conv otherwise. Under
// Lenient any problem leaves dst untouched and Field returns true.
func Field[T any](d *Decoder, obj map[string]any, key string, optional bool, dst *T, conv func(*Decoder, any, *T) bool) bool {
	d.push(key)
	defer d.pop()

	v, ok := obj[key]
	if !ok || (v == nil && optional) {
		if optional {
			return true
		}

		return d.Fail("missing required field") || d.Mode == Lenient
	}

	var tmp T
	if !conv(d, v, &tmp) {
		return d.Mode == Lenient
	}

	*dst = tmp

	return true
}

// ListOf lifts an element converter to a converter of JSON arrays. Under
// Lenient, elements that fail to convert are dropped.
func ListOf[T any](conv func(*Decoder, any, *T) bool) func(*Decoder, any, *[]T) bool {
	return func(d *Decoder, v any, dst *[]T) bool {
		arr, ok := v.([]any)
		if !ok {
			return d.Fail("expected array, got %s", describe(v))
		}

		out := make([]T, 0, len(arr))

		for i, elem := range arr {
			var tmp T

			d.push(fmt.Sprintf("[%d]", i))
			ok := conv(d, elem, &tmp)
			d.pop()

			if !ok {
				if d.Mode == Lenient {
					continue
				}

				return false
			}

			out = append(out, tmp)
		}

		*dst = out

		return true
	}
}

// StructOf adapts a generated type to a converter. Instantiate it
// explicitly: StructOf[Reward, *Reward].
func StructOf[T any, PT interface {
	*T
	Decodable
}](d *Decoder, v any, dst *T) bool {
	return PT(dst).Decode(d, v)
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}
