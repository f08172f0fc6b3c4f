package namesweep

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const compareBufferSize = 64 * 1024

type MismatchReason string

const (
	MismatchSize    MismatchReason = "size"
	MismatchContent MismatchReason = "content"
	MismatchMissing MismatchReason = "missing"
	MismatchType    MismatchReason = "type"
)

// Mismatch names the first difference found between two entries. Path is
// relative to the compared roots; "." means the roots themselves.
type Mismatch struct {
	Path   string         `json:"path"`
	Reason MismatchReason `json:"reason"`
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("%s: %s differs", m.Path, m.Reason)
}

// Comparator reports the first difference between two entries, or nil.
type Comparator interface {
	CompareFiles(pathA, pathB string) (*Mismatch, error)
	CompareDirs(pathA, pathB string) (*Mismatch, error)
}

type ContentComparator struct{}

func NewContentComparator() *ContentComparator {
	return &ContentComparator{}
}

func (c *ContentComparator) FilesEqual(pathA, pathB string) (bool, error) {
	mismatch, err := c.CompareFiles(pathA, pathB)
	return mismatch == nil && err == nil, err
}

func (c *ContentComparator) DirsEqual(pathA, pathB string) (bool, error) {
	mismatch, err := c.CompareDirs(pathA, pathB)
	return mismatch == nil && err == nil, err
}

// CompareFiles compares two regular files by size, then by content. Entries
// that are not regular files never compare equal.
func (c *ContentComparator) CompareFiles(pathA, pathB string) (*Mismatch, error) {
	infoA, infoB, err := lstatPair(pathA, pathB)
	if err != nil {
		return nil, err
	}
	return c.compareFiles(".", pathA, pathB, infoA, infoB)
}

func (c *ContentComparator) CompareDirs(pathA, pathB string) (*Mismatch, error) {
	infoA, infoB, err := lstatPair(pathA, pathB)
	if err != nil {
		return nil, err
	}
	if !infoA.IsDir() || !infoB.IsDir() {
		return &Mismatch{Path: ".", Reason: MismatchType}, nil
	}
	return c.compareDirs(".", pathA, pathB)
}

func (c *ContentComparator) compareFiles(rel, pathA, pathB string, infoA, infoB fs.FileInfo) (*Mismatch, error) {
	if !infoA.Mode().IsRegular() || !infoB.Mode().IsRegular() {
		return &Mismatch{Path: rel, Reason: MismatchType}, nil
	}
	if infoA.Size() != infoB.Size() {
		return &Mismatch{Path: rel, Reason: MismatchSize}, nil
	}

	equal, err := sameContent(pathA, pathB)
	if err != nil {
		return nil, &ComparisonError{PathA: pathA, PathB: pathB, Err: err}
	}
	if !equal {
		return &Mismatch{Path: rel, Reason: MismatchContent}, nil
	}
	return nil, nil
}

func (c *ContentComparator) compareDirs(rel, pathA, pathB string) (*Mismatch, error) {
	entriesA, err := os.ReadDir(pathA)
	if err != nil {
		return nil, &ComparisonError{PathA: pathA, PathB: pathB, Err: err}
	}
	entriesB, err := os.ReadDir(pathB)
	if err != nil {
		return nil, &ComparisonError{PathA: pathA, PathB: pathB, Err: err}
	}

	namesB := make(map[string]bool, len(entriesB))
	for _, e := range entriesB {
		namesB[e.Name()] = true
	}
	for _, e := range entriesA {
		if !namesB[e.Name()] {
			return &Mismatch{Path: filepath.Join(rel, e.Name()), Reason: MismatchMissing}, nil
		}
	}
	if len(entriesA) != len(entriesB) {
		namesA := make(map[string]bool, len(entriesA))
		for _, e := range entriesA {
			namesA[e.Name()] = true
		}
		for _, e := range entriesB {
			if !namesA[e.Name()] {
				return &Mismatch{Path: filepath.Join(rel, e.Name()), Reason: MismatchMissing}, nil
			}
		}
	}

	// Entries are sorted by name, so the walk order is deterministic.
	for _, e := range entriesA {
		childRel := filepath.Join(rel, e.Name())
		childA := filepath.Join(pathA, e.Name())
		childB := filepath.Join(pathB, e.Name())

		infoA, infoB, err := lstatPair(childA, childB)
		if err != nil {
			return nil, err
		}

		var mismatch *Mismatch
		switch {
		case infoA.IsDir() && infoB.IsDir():
			mismatch, err = c.compareDirs(childRel, childA, childB)
		case infoA.Mode().IsRegular() && infoB.Mode().IsRegular():
			mismatch, err = c.compareFiles(childRel, childA, childB, infoA, infoB)
		case infoA.Mode()&fs.ModeSymlink != 0 && infoB.Mode()&fs.ModeSymlink != 0:
			mismatch, err = compareLinks(childRel, childA, childB)
		default:
			mismatch = &Mismatch{Path: childRel, Reason: MismatchType}
		}
		if err != nil || mismatch != nil {
			return mismatch, err
		}
	}

	return nil, nil
}

func compareLinks(rel, pathA, pathB string) (*Mismatch, error) {
	targetA, err := os.Readlink(pathA)
	if err != nil {
		return nil, &ComparisonError{PathA: pathA, PathB: pathB, Err: err}
	}
	targetB, err := os.Readlink(pathB)
	if err != nil {
		return nil, &ComparisonError{PathA: pathA, PathB: pathB, Err: err}
	}
	if targetA != targetB {
		return &Mismatch{Path: rel, Reason: MismatchContent}, nil
	}
	return nil, nil
}

func lstatPair(pathA, pathB string) (fs.FileInfo, fs.FileInfo, error) {
	infoA, err := os.Lstat(pathA)
	if err != nil {
		return nil, nil, &ComparisonError{PathA: pathA, PathB: pathB, Err: err}
	}
	infoB, err := os.Lstat(pathB)
	if err != nil {
		return nil, nil, &ComparisonError{PathA: pathA, PathB: pathB, Err: err}
	}
	return infoA, infoB, nil
}

func sameContent(pathA, pathB string) (bool, error) {
	fileA, err := os.Open(pathA)
	if err != nil {
		return false, err
	}
	defer fileA.Close()

	fileB, err := os.Open(pathB)
	if err != nil {
		return false, err
	}
	defer fileB.Close()

	bufA := make([]byte, compareBufferSize)
	bufB := make([]byte, compareBufferSize)
	for {
		nA, errA := io.ReadFull(fileA, bufA)
		nB, errB := io.ReadFull(fileB, bufB)
		if err := readErr(errA); err != nil {
			return false, err
		}
		if err := readErr(errB); err != nil {
			return false, err
		}
		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}
		if errA != nil || errB != nil {
			return errA != nil && errB != nil, nil
		}
	}
}

func readErr(err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	return err
}
