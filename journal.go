package namesweep

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// EventSink receives every outcome of a run as it happens.
type EventSink interface {
	Record(ev Event)
}

// Journal echoes events to a writer and keeps every line so the run log can
// be written once the run is over.
type Journal struct {
	out   io.Writer
	lines []string
}

func NewJournal(out io.Writer) *Journal {
	if out == nil {
		out = io.Discard
	}
	return &Journal{out: out}
}

func (j *Journal) Record(ev Event) {
	j.println(ev.String())
}

func (j *Journal) Lines() []string {
	return j.lines
}

func (j *Journal) println(line string) {
	_, _ = fmt.Fprintln(j.out, line)
	j.lines = append(j.lines, line)
}

const summaryRule = "----------------------------------------"

func (j *Journal) Summary(report *Report) {
	s := report.Stats

	j.println("")
	if report.DryRun {
		j.println("SUMMARY (dry run, nothing was changed)")
	} else {
		j.println("SUMMARY")
	}
	j.println(summaryRule)
	j.println(fmt.Sprintf("%-32s: %d", "Files scanned", s.FilesScanned))
	j.println(fmt.Sprintf("%-32s: %d", "Directories scanned", s.DirsScanned))
	j.println(fmt.Sprintf("%-32s: %d", "Files renamed", s.FilesRenamed))
	j.println(fmt.Sprintf("%-32s: %d", "Files deleted (identical)", s.FilesDeleted))
	j.println(fmt.Sprintf("%-32s: %d", "File conflicts", s.FileConflicts))
	j.println(fmt.Sprintf("%-32s: %d", "Directories renamed", s.DirsRenamed))
	j.println(fmt.Sprintf("%-32s: %d", "Directories deleted (identical)", s.DirsDeleted))
	j.println(fmt.Sprintf("%-32s: %d", "Directory conflicts", s.DirConflicts))
	j.println(fmt.Sprintf("%-32s: %d", "Errors", len(s.Errors)))
	j.println(summaryRule)

	if len(s.Errors) > 0 {
		j.println("")
		j.println("ERRORS:")
		for _, msg := range s.Errors {
			j.println(" - " + msg)
		}
	}
}

// WriteFile replaces path with a timestamped header followed by every line
// recorded so far.
func (j *Journal) WriteFile(path string, now time.Time) error {
	var b strings.Builder
	b.WriteString("Run log - " + now.Format(time.RFC3339) + "\n\n")
	b.WriteString(strings.Join(j.lines, "\n"))
	b.WriteString("\n")
	return os.WriteFile(path, []byte(b.String()), DefaultFilePermissions)
}
