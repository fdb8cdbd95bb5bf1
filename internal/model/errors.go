package model

import (
	"errors"
	"fmt"
)

// Schema failures. They are fatal to a generation run and are always
// reported wrapped in a *SchemaError naming the offending sheet or struct.
var (
	ErrDuplicateSheetName    = errors.New("duplicate sheet name")
	ErrDuplicateFieldName    = errors.New("duplicate field name")
	ErrInvalidKeyField       = errors.New("invalid key field")
	ErrConflictingStruct     = errors.New("conflicting struct definition")
	ErrCyclicStructReference = errors.New("cyclic struct reference")
	ErrUnknownFieldType      = errors.New("unknown field type")
)

// SchemaError reports a schema failure for a sheet or struct.
type SchemaError struct {
	// Name of the sheet or struct the failure belongs to.
	Name string
	// Detail narrows the failure down, e.g. a field name or a cycle path.
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schema %s: %v", e.Name, e.Err)
	}

	return fmt.Sprintf("schema %s: %v: %s", e.Name, e.Err, e.Detail)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func schemaErr(name string, err error, detail string, args ...any) *SchemaError {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}

	return &SchemaError{Name: name, Detail: detail, Err: err}
}
