package target

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Mode -output=mode_string.go -trimprefix=Mode

// Mode selects how generated code reacts to malformed input.
type Mode int

const (
	_ Mode = iota // zero value is invalid

	// ModeStrict aborts decoding of a struct on the first missing required
	// field or type mismatch and leaves the destination unchanged.
	ModeStrict
	// ModeLenient skips missing or mismatched fields and keeps their
	// defaults.
	ModeLenient
)

// ParseMode parses "strict" or "lenient", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return ModeStrict, nil
	case "lenient":
		return ModeLenient, nil
	default:
		return 0, fmt.Errorf("unknown deserialization mode %q (want strict or lenient)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = v

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid deserialization mode %d", int(m))
	}

	return []byte(strings.ToLower(m.String())), nil
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m == ModeStrict || m == ModeLenient
}
