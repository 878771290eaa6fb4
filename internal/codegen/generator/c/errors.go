package cgen

import (
	"errors"
	"fmt"

	"github.com/canfestival-tools/objdictgen/internal/codegen/ctype"
)

var (
	ErrUnsupportedType    = ctype.ErrUnsupportedType
	ErrUninitializedValue = errors.New("value not initialized")
	ErrDuplicateIndex     = errors.New("duplicate index")
	ErrNoSuchObject       = errors.New("no such object")
)

// EntryError locates a generation failure in the object dictionary.
type EntryError struct {
	Index    uint16
	Subindex int
	Err      error
}

func (e *EntryError) Error() string {
	if e.Subindex < 0 {
		return fmt.Sprintf("index 0x%04X: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("index 0x%04X, subindex 0x%02X: %v", e.Index, e.Subindex, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

func entryErr(index uint16, subindex int, err error) error {
	var ee *EntryError
	if errors.As(err, &ee) {
		return err
	}
	return &EntryError{Index: index, Subindex: subindex, Err: err}
}
