package namesweep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sort"

	"go.uber.org/zap"
)

// recorder adds outcomes to the run's Report and forwards them to the sink.
type recorder struct {
	report *Report
	sink   EventSink
	log    *zap.Logger
}

func (r *recorder) emit(ev Event) Outcome {
	r.report.add(ev)
	if r.sink != nil {
		r.sink.Record(ev)
	}
	if ev.Outcome == OutcomeError {
		r.log.Warn("entry failed", zap.String("kind", string(ev.Kind)), zap.String("src", ev.Src), zap.Error(ev.Err))
	}
	return ev.Outcome
}

func (r *recorder) fail(kind EntryKind, src, dst string, err error) Outcome {
	return r.emit(Event{
		Outcome: OutcomeError,
		Kind:    kind,
		Src:     src,
		Dst:     dst,
		Message: fmt.Sprintf("[%s] %v", kind, err),
		Err:     err,
	})
}

// ConflictResolver moves an entry to its canonical path, deleting it when an
// identical entry already occupies the path and flagging it otherwise. It
// never overwrites an existing entry.
//
// In a dry run, planned maps each path touched by a planned move or delete
// to the real path backing it, or "" when the path would be gone.
type ConflictResolver struct {
	comparator Comparator
	rec        *recorder
	dryRun     bool
	planned    map[string]string
}

func NewConflictResolver(comparator Comparator, report *Report, sink EventSink, log *zap.Logger) *ConflictResolver {
	return &ConflictResolver{
		comparator: comparator,
		rec:        &recorder{report: report, sink: sink, log: orNop(log)},
		dryRun:     report.DryRun,
		planned:    make(map[string]string),
	}
}

// current returns the real path holding what would be at path after the
// changes planned so far, and false when nothing would be there.
func (r *ConflictResolver) current(path string) (string, bool) {
	if backing, ok := r.planned[path]; ok {
		return backing, backing != ""
	}
	return path, true
}

func (r *ConflictResolver) ResolveFile(src, dst string) Outcome {
	return r.resolve(KindFile, src, dst)
}

func (r *ConflictResolver) ResolveDir(src, dst string) Outcome {
	return r.resolve(KindDir, src, dst)
}

// ResolveGroup folds every member of g into the lexicographically smallest
// one, then moves the survivor to the group's canonical path if that path is
// free. A member still sitting on the canonical path after the fold differs
// from the keeper and has already been reported as a conflict.
func (r *ConflictResolver) ResolveGroup(g NameGroup) {
	if len(g.Members) == 0 {
		r.rec.fail(KindDir, g.Target(), "", &GroupProcessingError{Group: g, Err: errors.New("group has no members")})
		return
	}

	members := append([]string(nil), g.Members...)
	sort.Strings(members)
	keeper := members[0]

	keeperPath, ok := r.current(keeper)
	if !ok {
		r.rec.fail(KindDir, keeper, g.Target(), &GroupProcessingError{Group: g, Err: fs.ErrNotExist})
		return
	}
	if _, err := os.Lstat(keeperPath); err != nil {
		r.rec.fail(KindDir, keeper, g.Target(), &GroupProcessingError{Group: g, Err: err})
		return
	}

	r.rec.log.Debug("resolving group",
		zap.String("target", g.Target()),
		zap.String("keeper", keeper),
		zap.Strings("members", members))

	for _, dup := range members[1:] {
		r.ResolveDir(dup, keeper)
	}

	target := g.Target()
	if keeper == target {
		return
	}
	if slices.Contains(members, target) && r.occupied(keeper, target) {
		r.rec.log.Debug("canonical path held by a conflicting member",
			zap.String("target", target),
			zap.String("keeper", keeper))
		return
	}
	r.ResolveDir(keeper, target)
}

// occupied reports whether dst exists and is a different entry than src.
func (r *ConflictResolver) occupied(src, dst string) bool {
	dstPath, ok := r.current(dst)
	if !ok {
		return false
	}
	dstInfo, err := os.Lstat(dstPath)
	if err != nil {
		return false
	}
	srcPath, _ := r.current(src)
	srcInfo, err := os.Lstat(srcPath)
	if err != nil {
		return true
	}
	return !os.SameFile(srcInfo, dstInfo)
}

func (r *ConflictResolver) resolve(kind EntryKind, src, dst string) Outcome {
	if src == dst {
		return OutcomeNone
	}

	srcPath, ok := r.current(src)
	if !ok {
		return OutcomeNone
	}
	srcInfo, err := os.Lstat(srcPath)
	if errors.Is(err, fs.ErrNotExist) {
		return OutcomeNone
	}
	if err != nil {
		return r.rec.fail(kind, src, dst, &RenameError{Op: "stat", Src: src, Err: err})
	}

	dstPath, ok := r.current(dst)
	if !ok {
		return r.move(kind, src, dst)
	}
	dstInfo, err := os.Lstat(dstPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return r.move(kind, src, dst)
	case err != nil:
		return r.rec.fail(kind, src, dst, &RenameError{Op: "stat", Src: dst, Err: err})
	case os.SameFile(srcInfo, dstInfo):
		// Case- or normalization-insensitive filesystem: dst is src.
		return r.move(kind, src, dst)
	}

	var mismatch *Mismatch
	if kind == KindDir {
		mismatch, err = r.comparator.CompareDirs(srcPath, dstPath)
	} else {
		mismatch, err = r.comparator.CompareFiles(srcPath, dstPath)
	}
	if err != nil {
		return r.rec.fail(kind, src, dst, err)
	}

	if mismatch != nil {
		return r.rec.emit(Event{
			Outcome: OutcomeConflict,
			Kind:    kind,
			Src:     src,
			Dst:     dst,
			Message: fmt.Sprintf("conflict: %s %s differs from %s (%s)", kind, src, dst, mismatch),
			DryRun:  r.dryRun,
		})
	}

	return r.delete(kind, src, dst)
}

func (r *ConflictResolver) move(kind EntryKind, src, dst string) Outcome {
	if r.dryRun {
		srcPath, _ := r.current(src)
		r.planned[dst] = srcPath
		r.planned[src] = ""
	} else if err := os.Rename(src, dst); err != nil {
		return r.rec.fail(kind, src, dst, &RenameError{Op: "rename", Src: src, Dst: dst, Err: err})
	}
	return r.rec.emit(Event{
		Outcome: OutcomeRenamed,
		Kind:    kind,
		Src:     src,
		Dst:     dst,
		Message: fmt.Sprintf("renamed %s: %s -> %s", kind, src, dst),
		DryRun:  r.dryRun,
	})
}

func (r *ConflictResolver) delete(kind EntryKind, src, dst string) Outcome {
	if r.dryRun {
		r.planned[src] = ""
	} else {
		var err error
		if kind == KindDir {
			err = os.RemoveAll(src)
		} else {
			err = os.Remove(src)
		}
		if err != nil {
			return r.rec.fail(kind, src, dst, &RenameError{Op: "delete", Src: src, Err: err})
		}
	}
	return r.rec.emit(Event{
		Outcome: OutcomeDeletedDuplicate,
		Kind:    kind,
		Src:     src,
		Dst:     dst,
		Message: fmt.Sprintf("deleted duplicate %s (identical to %s): %s", kind, dst, src),
		DryRun:  r.dryRun,
	})
}
