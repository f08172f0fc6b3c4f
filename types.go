package namesweep

import (
	"fmt"
	"path/filepath"
)

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeRenamed
	OutcomeDeletedDuplicate
	OutcomeConflict
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRenamed:
		return "renamed"
	case OutcomeDeletedDuplicate:
		return "deleted"
	case OutcomeConflict:
		return "conflict"
	case OutcomeError:
		return "error"
	default:
		return "none"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

type EntryKind string

const (
	KindFile EntryKind = "file"
	KindDir  EntryKind = "dir"
)

type Event struct {
	Outcome Outcome   `json:"outcome"`
	Kind    EntryKind `json:"kind"`
	Src     string    `json:"src"`
	Dst     string    `json:"dst,omitempty"`
	Message string    `json:"message"`
	DryRun  bool      `json:"dry_run,omitempty"`
	Err     error     `json:"-"`
}

func (e Event) String() string {
	if e.DryRun {
		return "[dry-run] " + e.Message
	}
	return e.Message
}

type Stats struct {
	FilesScanned  int      `json:"files_scanned"`
	DirsScanned   int      `json:"dirs_scanned"`
	FilesRenamed  int      `json:"files_renamed"`
	FilesDeleted  int      `json:"files_deleted"`
	FileConflicts int      `json:"file_conflicts"`
	DirsRenamed   int      `json:"dirs_renamed"`
	DirsDeleted   int      `json:"dirs_deleted"`
	DirConflicts  int      `json:"dir_conflicts"`
	Errors        []string `json:"errors,omitempty"`
}

// Changes is the number of renames and deletions, performed or planned.
func (s Stats) Changes() int {
	return s.FilesRenamed + s.FilesDeleted + s.DirsRenamed + s.DirsDeleted
}

// Report is the result of a single run. It is created empty when the run
// starts and only mutated by the run that owns it.
type Report struct {
	Root   string  `json:"root"`
	DryRun bool    `json:"dry_run,omitempty"`
	Stats  Stats   `json:"stats"`
	Events []Event `json:"events"`
}

func NewReport(root string, dryRun bool) *Report {
	return &Report{
		Root:   root,
		DryRun: dryRun,
		Events: []Event{},
	}
}

func (r *Report) add(ev Event) {
	r.Events = append(r.Events, ev)

	switch ev.Outcome {
	case OutcomeRenamed:
		if ev.Kind == KindDir {
			r.Stats.DirsRenamed++
		} else {
			r.Stats.FilesRenamed++
		}
	case OutcomeDeletedDuplicate:
		if ev.Kind == KindDir {
			r.Stats.DirsDeleted++
		} else {
			r.Stats.FilesDeleted++
		}
	case OutcomeConflict:
		if ev.Kind == KindDir {
			r.Stats.DirConflicts++
		} else {
			r.Stats.FileConflicts++
		}
	case OutcomeError:
		r.Stats.Errors = append(r.Stats.Errors, ev.Message)
	}
}

// NameGroup holds the sibling directories of Parent whose names canonicalize
// to Canonical, in the order they were listed.
type NameGroup struct {
	Parent    string   `json:"parent"`
	Canonical string   `json:"canonical"`
	Members   []string `json:"members"`
}

func (g NameGroup) Target() string {
	return filepath.Join(g.Parent, g.Canonical)
}

func (g NameGroup) String() string {
	return fmt.Sprintf("%s (%d members)", g.Target(), len(g.Members))
}

type groupKey struct {
	parent    string
	canonical string
}

// groupIndex keeps NameGroups in first-seen order so groups found deeper in
// the tree are resolved before their ancestors.
type groupIndex struct {
	order  []groupKey
	groups map[groupKey]*NameGroup
}

func newGroupIndex() *groupIndex {
	return &groupIndex{groups: make(map[groupKey]*NameGroup)}
}

func (i *groupIndex) add(parent, canonical, member string) {
	key := groupKey{parent: parent, canonical: canonical}
	g, ok := i.groups[key]
	if !ok {
		g = &NameGroup{Parent: parent, Canonical: canonical}
		i.groups[key] = g
		i.order = append(i.order, key)
	}
	g.Members = append(g.Members, member)
}

func (i *groupIndex) list() []NameGroup {
	result := make([]NameGroup, 0, len(i.order))
	for _, key := range i.order {
		result = append(result, *i.groups[key])
	}
	return result
}
