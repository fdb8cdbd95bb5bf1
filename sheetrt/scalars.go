package sheetrt

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Converters for the scalar kinds. Each accepts exactly the JSON shape of
// its kind; numbers may arrive as json.Number or float64.

func Int32(d *Decoder, v any, dst *int32) bool {
	n, ok := integer(d, v)
	if !ok {
		return false
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		return d.Fail("%d overflows int32", n)
	}

	*dst = int32(n)

	return true
}

func Int64(d *Decoder, v any, dst *int64) bool {
	n, ok := integer(d, v)
	if !ok {
		return false
	}

	*dst = n

	return true
}

func Float64(d *Decoder, v any, dst *float64) bool {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return d.Fail("invalid number %q", x.String())
		}

		*dst = f
	case float64:
		*dst = x
	default:
		return d.Fail("expected number, got %s", describe(v))
	}

	return true
}

func Bool(d *Decoder, v any, dst *bool) bool {
	b, ok := v.(bool)
	if !ok {
		return d.Fail("expected bool, got %s", describe(v))
	}

	*dst = b

	return true
}

func String(d *Decoder, v any, dst *string) bool {
	s, ok := v.(string)
	if !ok {
		return d.Fail("expected string, got %s", describe(v))
	}

	*dst = s

	return true
}

// timeLayouts are the ISO-8601 spellings accepted for timestamps. Values
// without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func Time(d *Decoder, v any, dst *time.Time) bool {
	s, ok := v.(string)
	if !ok {
		return d.Fail("expected timestamp string, got %s", describe(v))
	}

	t, err := ParseTime(s)
	if err != nil {
		return d.Fail("invalid timestamp %q", s)
	}

	*dst = t

	return true
}

// ParseTime parses an ISO-8601 timestamp.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &DecodeError{Reason: "invalid timestamp " + strconv.Quote(s)}
}

// Raw keeps any JSON value; it never fails.
func Raw(_ *Decoder, v any, dst *RawValue) bool {
	*dst = RawValue{V: v}

	return true
}

func integer(d *Decoder, v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, d.Fail("expected integer, got %s", x.String())
		}

		return n, true
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, d.Fail("expected integer, got %v", x)
		}

		return int64(x), true
	default:
		return 0, d.Fail("expected integer, got %s", describe(v))
	}
}
