package namesweep

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrUsage is returned when the command line is malformed or the root is not
// a directory. Nothing has been touched when it is returned.
var ErrUsage = errors.New("usage error")

// RunCmdOptions contains options for customizing RunCmd behavior
type RunCmdOptions struct {
	// MCPTransport allows providing a custom transport for MCP server (used for testing)
	MCPTransport *mcp.InMemoryTransport
	// Stdout writer for normal output (defaults to os.Stdout)
	Stdout io.Writer
	// Stderr writer for error output (defaults to os.Stderr)
	Stderr io.Writer
	// Now returns the time stamped in the run log (defaults to time.Now)
	Now func() time.Time
}

func RunCmd(args []string, options *RunCmdOptions) error {
	stdout, stderr := io.Writer(os.Stdout), io.Writer(os.Stderr)
	now := time.Now
	if options != nil {
		if options.Stdout != nil {
			stdout = options.Stdout
		}
		if options.Stderr != nil {
			stderr = options.Stderr
		}
		if options.Now != nil {
			now = options.Now
		}
	}

	name := "name-sweep"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		help       = fs.Bool("h", false, "Show help")
		mcpOption  = fs.Bool("mcp", false, "Run as MCP server")
		verbose    = fs.Bool("v", false, "Verbose output")
		dryRun     = fs.Bool("dry-run", false, "Show what would be changed without making changes")
		configFile = fs.String("config", "", "Path to configuration file")
	)

	if err := fs.Parse(args); err != nil {
		_ = ShowHelp(stderr)
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if *help {
		return ShowHelp(stdout)
	}

	if *mcpOption {
		var transport *mcp.InMemoryTransport
		if options != nil && options.MCPTransport != nil {
			transport = options.MCPTransport
		}
		return RunMCPServer(*configFile, transport)
	}

	if fs.NArg() != 1 {
		_ = ShowHelp(stderr)
		return fmt.Errorf("%w: expected exactly one root directory, got %d arguments", ErrUsage, fs.NArg())
	}

	root, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if err := NewDefaultValidator().ValidateRoot(root); err != nil {
		_ = ShowHelp(stderr)
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	config, err := LoadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := config.LogLevel
	if *verbose {
		level = "debug"
	}
	log, err := NewLogger(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	journal := NewJournal(stdout)
	walker := NewTreeWalker(config, WalkerOptions{
		Sink:   journal,
		Logger: log,
		DryRun: *dryRun,
	})

	// A run is not cancellable; an interrupt kills the process mid-walk.
	report, err := walker.Run(context.Background(), root)
	if err != nil {
		return err
	}

	journal.Summary(report)

	if config.LogFile != "" {
		logPath := filepath.Join(root, config.LogFile)
		if err := journal.WriteFile(logPath, now()); err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to save %s: %v\n", logPath, err)
		} else {
			_, _ = fmt.Fprintf(stdout, "\nLog saved to: %s\n", logPath)
		}
	}

	return nil
}

func ShowHelp(w io.Writer) error {
	help := `name-sweep - Normalize file and directory names and merge duplicates

Usage:
  name-sweep [OPTIONS] ROOT
  name-sweep -mcp              Run as MCP server

Every name below ROOT is rewritten to plain ASCII (accents and special
characters removed). Entries that collide after renaming are compared by
content: identical duplicates are deleted, different ones are reported as
conflicts and left in place. A log of the run is written to ROOT/log.txt.

Options:
  -h                   Show this help message
  -v                   Verbose diagnostic output on stderr
  -dry-run             Preview changes without modifying anything
  -config FILE         Path to configuration file
  -mcp                 Run as MCP server

Examples:
  name-sweep /path/to/archive
  name-sweep -dry-run /path/to/archive
  name-sweep -config=/path/to/config.yaml /path/to/archive
`
	_, _ = fmt.Fprint(w, help)
	return nil
}
