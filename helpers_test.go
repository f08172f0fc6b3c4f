package namesweep_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	namesweep "github.com/thrawn01/name-sweep"
)

// writeTree creates files below root. A path ending in "/" creates an empty
// directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		if path[len(path)-1] == '/' {
			require.NoError(t, os.MkdirAll(fullPath, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), namesweep.DefaultFilePermissions))
	}
}

// listTree returns every path below root, relative and slash separated,
// with directories suffixed by "/".
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	require.NoError(t, filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		paths = append(paths, rel)
		return nil
	}))
	sort.Strings(paths)
	return paths
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// recordingSink keeps every event it is given.
type recordingSink struct {
	events []namesweep.Event
}

func (s *recordingSink) Record(ev namesweep.Event) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) outcomes() []namesweep.Outcome {
	var result []namesweep.Outcome
	for _, ev := range s.events {
		result = append(result, ev.Outcome)
	}
	return result
}

// failingComparator fails every comparison that touches an entry named
// failName and defers everything else to the wrapped Comparator.
type failingComparator struct {
	namesweep.Comparator
	failName string
}

func (c *failingComparator) check(pathA, pathB string) error {
	if filepath.Base(pathA) == c.failName || filepath.Base(pathB) == c.failName {
		return &namesweep.ComparisonError{PathA: pathA, PathB: pathB, Err: errors.New("read failed")}
	}
	return nil
}

func (c *failingComparator) CompareFiles(pathA, pathB string) (*namesweep.Mismatch, error) {
	if err := c.check(pathA, pathB); err != nil {
		return nil, err
	}
	return c.Comparator.CompareFiles(pathA, pathB)
}

func (c *failingComparator) CompareDirs(pathA, pathB string) (*namesweep.Mismatch, error) {
	if err := c.check(pathA, pathB); err != nil {
		return nil, err
	}
	return c.Comparator.CompareDirs(pathA, pathB)
}
