package namesweep

import (
	"errors"
	"fmt"
)

// ErrUnrepresentableName is returned when a name has no usable ASCII form,
// for example when every character is stripped or the result would escape
// its parent directory.
var ErrUnrepresentableName = errors.New("name has no usable ASCII form")

// ComparisonError reports an I/O failure while comparing two entries.
type ComparisonError struct {
	PathA string
	PathB string
	Err   error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("compare %s vs %s: %v", e.PathA, e.PathB, e.Err)
}

func (e *ComparisonError) Unwrap() error { return e.Err }

// RenameError reports an I/O failure while moving or deleting an entry.
type RenameError struct {
	Op  string
	Src string
	Dst string
	Err error
}

func (e *RenameError) Error() string {
	if e.Dst == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Src, e.Err)
	}
	return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.Src, e.Dst, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

type GroupProcessingError struct {
	Group NameGroup
	Err   error
}

func (e *GroupProcessingError) Error() string {
	return fmt.Sprintf("process group %s %v: %v", e.Group.Target(), e.Group.Members, e.Err)
}

func (e *GroupProcessingError) Unwrap() error { return e.Err }

// ScanError reports a directory that could not be listed.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }
