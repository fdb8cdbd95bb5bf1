package target

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"sheetgen/internal/model"
	"sheetgen/internal/naming"
)

var (
	// ErrUnknownTarget is returned by Lookup for unregistered names.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrDuplicateTarget is returned by Register for a name already taken.
	ErrDuplicateTarget = errors.New("duplicate target")
	// ErrIncompleteTarget is returned by Register for a descriptor that
	// cannot spell every scalar kind.
	ErrIncompleteTarget = errors.New("incomplete target")
)

// UnknownTargetError carries the requested name and close registered ones.
type UnknownTargetError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownTargetError) Error() string {
	msg := fmt.Sprintf("%s %q", ErrUnknownTarget, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}

	return msg
}

func (e *UnknownTargetError) Unwrap() error {
	return ErrUnknownTarget
}

var (
	mu       sync.RWMutex
	registry = make(map[string]*Descriptor)
)

func init() {
	for _, d := range []*Descriptor{Go, UE5} {
		if err := Register(d); err != nil {
			panic(err)
		}
	}
}

// Register adds a target. Names are case-insensitive.
func Register(d *Descriptor) error {
	key := strings.ToLower(d.Name)

	mu.Lock()
	defer mu.Unlock()

	if _, ok := registry[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTarget, d.Name)
	}

	if err := d.validate(); err != nil {
		return err
	}

	registry[key] = d

	return nil
}

// validate checks that d spells every scalar kind, and has a converter
// for each when it uses converters.
func (d *Descriptor) validate() error {
	for k := range d.Scalars {
		if !k.IsScalar() {
			return fmt.Errorf("%w: %s: %s is not a scalar kind", ErrIncompleteTarget, d.Name, k)
		}
	}

	for _, k := range model.ScalarKinds() {
		if d.Scalars[k] == "" {
			return fmt.Errorf("%w: %s: no spelling for %s", ErrIncompleteTarget, d.Name, k)
		}

		if d.Converters != nil && d.Converters[k] == "" {
			return fmt.Errorf("%w: %s: no converter for %s", ErrIncompleteTarget, d.Name, k)
		}
	}

	return nil
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (*Descriptor, error) {
	mu.RLock()
	d, ok := registry[strings.ToLower(name)]
	mu.RUnlock()

	if ok {
		return d, nil
	}

	return nil, &UnknownTargetError{Name: name, Suggestions: naming.Suggest(name, Names())}
}

// Names returns the registered target names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
