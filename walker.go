package namesweep

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const DefaultFilePermissions = 0644

// Phase is a step of a TreeWalker run.
type Phase int

const (
	PhaseScanFiles Phase = iota
	PhaseScanDirs
	PhaseResolveGroups
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseScanFiles:
		return "scan-files"
	case PhaseScanDirs:
		return "scan-dirs"
	case PhaseResolveGroups:
		return "resolve-groups"
	default:
		return "done"
	}
}

// DirListing is one directory's immediate children, split by type.
// Anything that is not a directory, including symlinks to directories, is
// listed as a file.
type DirListing struct {
	Path  string
	Dirs  []fs.DirEntry
	Files []fs.DirEntry
}

type WalkerOptions struct {
	Sanitizer  Sanitizer
	Comparator Comparator
	Validator  Validator
	Sink       EventSink
	Logger     *zap.Logger
	DryRun     bool
}

// TreeWalker sanitizes every name below a root directory. Files are settled
// first, deepest directories first; then sibling directories are grouped by
// canonical name and resolved, again deepest first.
type TreeWalker struct {
	config     *Config
	sanitizer  Sanitizer
	comparator Comparator
	validator  Validator
	sink       EventSink
	log        *zap.Logger
	dryRun     bool
	exclude    map[string]bool
	readDir    func(name string) ([]fs.DirEntry, error)
}

func NewTreeWalker(config *Config, opts WalkerOptions) *TreeWalker {
	w := &TreeWalker{
		config:     config,
		sanitizer:  opts.Sanitizer,
		comparator: opts.Comparator,
		validator:  opts.Validator,
		sink:       opts.Sink,
		log:        orNop(opts.Logger),
		dryRun:     opts.DryRun,
		exclude:    make(map[string]bool, len(config.ExcludeDirs)),
		readDir:    os.ReadDir,
	}
	if w.sanitizer == nil {
		w.sanitizer = NewUnicodeSanitizer(config)
	}
	if w.comparator == nil {
		w.comparator = NewContentComparator()
	}
	if w.validator == nil {
		w.validator = NewDefaultValidator()
	}
	for _, name := range config.ExcludeDirs {
		w.exclude[name] = true
	}
	return w
}

// Run processes root and returns the report of everything it did. The root
// directory itself is never renamed. If ctx is cancelled the walk stops
// between entries and the partial report is returned with ctx.Err().
func (w *TreeWalker) Run(ctx context.Context, root string) (*Report, error) {
	if err := w.validator.ValidateRoot(root); err != nil {
		return nil, fmt.Errorf("invalid root path: %w", err)
	}

	report := NewReport(root, w.dryRun)
	resolver := NewConflictResolver(w.comparator, report, w.sink, w.log)
	var (
		groups     *groupIndex
		unreadable map[string]bool
	)

	for phase := PhaseScanFiles; phase != PhaseDone; {
		if ctx.Err() != nil {
			w.log.Info("run interrupted", zap.Stringer("phase", phase))
			return report, ctx.Err()
		}

		w.log.Debug("entering phase", zap.Stringer("phase", phase), zap.String("root", root))

		switch phase {
		case PhaseScanFiles:
			unreadable = w.scanFiles(ctx, root, resolver)
			phase = PhaseScanDirs
		case PhaseScanDirs:
			groups = w.scanDirs(ctx, root, resolver, unreadable)
			phase = PhaseResolveGroups
		case PhaseResolveGroups:
			w.resolveGroups(ctx, groups, resolver)
			phase = PhaseDone
		}
	}

	w.log.Info("run complete",
		zap.String("root", root),
		zap.Int("changes", report.Stats.Changes()),
		zap.Int("errors", len(report.Stats.Errors)))

	return report, ctx.Err()
}

// scanFiles resolves every non-directory entry and returns the directories
// that could not be listed.
func (w *TreeWalker) scanFiles(ctx context.Context, root string, resolver *ConflictResolver) map[string]bool {
	unreadable := make(map[string]bool)

	for listing, err := range w.bottomUp(ctx, root) {
		if err != nil {
			unreadable[listing.Path] = true
			resolver.rec.fail(KindDir, listing.Path, "", err)
			continue
		}

		for _, entry := range listing.Files {
			if ctx.Err() != nil {
				return unreadable
			}

			resolver.rec.report.Stats.FilesScanned++
			original := filepath.Join(listing.Path, entry.Name())
			canonical := w.sanitizer.Canonicalize(entry.Name())
			if err := w.validator.ValidateCanonicalName(canonical); err != nil {
				resolver.rec.fail(KindFile, original, "", &RenameError{Op: "sanitize", Src: original, Err: err})
				continue
			}

			resolver.ResolveFile(original, filepath.Join(listing.Path, canonical))
		}
	}

	return unreadable
}

// scanDirs groups every directory below root by (parent, canonical name)
// without touching the filesystem, so no listing is invalidated by a rename
// made while the tree is still being enumerated. Listing failures already
// reported by scanFiles are not reported again.
func (w *TreeWalker) scanDirs(ctx context.Context, root string, resolver *ConflictResolver, unreadable map[string]bool) *groupIndex {
	groups := newGroupIndex()

	for listing, err := range w.bottomUp(ctx, root) {
		if err != nil {
			if !unreadable[listing.Path] {
				resolver.rec.fail(KindDir, listing.Path, "", err)
			}
			continue
		}

		for _, entry := range listing.Dirs {
			resolver.rec.report.Stats.DirsScanned++
			original := filepath.Join(listing.Path, entry.Name())
			canonical := w.sanitizer.Canonicalize(entry.Name())
			if err := w.validator.ValidateCanonicalName(canonical); err != nil {
				resolver.rec.fail(KindDir, original, "", &RenameError{Op: "sanitize", Src: original, Err: err})
				continue
			}

			groups.add(listing.Path, canonical, original)
		}
	}

	return groups
}

func (w *TreeWalker) resolveGroups(ctx context.Context, groups *groupIndex, resolver *ConflictResolver) {
	for _, g := range groups.list() {
		if ctx.Err() != nil {
			return
		}

		if len(g.Members) == 1 {
			resolver.ResolveDir(g.Members[0], g.Target())
			continue
		}
		resolver.ResolveGroup(g)
	}
}

// bottomUp yields every directory below and including root after all of its
// subdirectories. Symlinked directories are not followed and excluded
// directories are skipped entirely.
func (w *TreeWalker) bottomUp(ctx context.Context, root string) iter.Seq2[DirListing, error] {
	return func(yield func(DirListing, error) bool) {
		w.descend(ctx, root, yield)
	}
}

func (w *TreeWalker) descend(ctx context.Context, dir string, yield func(DirListing, error) bool) bool {
	if ctx.Err() != nil {
		return false
	}

	entries, err := w.readDir(dir)
	if err != nil {
		return yield(DirListing{Path: dir}, &ScanError{Path: dir, Err: err})
	}

	listing := DirListing{Path: dir}
	for _, entry := range entries {
		if !entry.IsDir() {
			listing.Files = append(listing.Files, entry)
			continue
		}
		if w.exclude[entry.Name()] {
			continue
		}
		listing.Dirs = append(listing.Dirs, entry)
	}

	for _, sub := range listing.Dirs {
		if !w.descend(ctx, filepath.Join(dir, sub.Name()), yield) {
			return false
		}
	}

	return yield(listing, nil)
}
