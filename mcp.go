package namesweep

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Parameter structures for MCP tools
type SanitizeTreeParams struct {
	Root   string `json:"root"`
	DryRun bool   `json:"dry_run"`
}

type CanonicalizeNamesParams struct {
	Names []string `json:"names"`
}

type ComparePathsParams struct {
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

type ComparePathsResult struct {
	Equal    bool      `json:"equal"`
	Mismatch *Mismatch `json:"mismatch,omitempty"`
}

// toolServer holds what the tool handlers share. Every sanitize_tree call
// builds its own walker and report.
type toolServer struct {
	config     *Config
	sanitizer  *UnicodeSanitizer
	comparator *ContentComparator
	log        *zap.Logger
	now        func() time.Time
}

func newToolServer(config *Config, log *zap.Logger) *toolServer {
	return &toolServer{
		config:     config,
		sanitizer:  NewUnicodeSanitizer(config),
		comparator: NewContentComparator(),
		log:        orNop(log),
		now:        time.Now,
	}
}

// Tool handler functions
func (s *toolServer) SanitizeTreeTool(ctx context.Context, req *mcp.CallToolRequest, args SanitizeTreeParams) (*mcp.CallToolResult, any, error) {
	if !filepath.IsAbs(args.Root) {
		return nil, nil, fmt.Errorf("root must be an absolute path")
	}

	// The console is the MCP transport, so events only go to the run log.
	journal := NewJournal(nil)
	walker := NewTreeWalker(s.config, WalkerOptions{
		Sanitizer:  s.sanitizer,
		Comparator: s.comparator,
		Sink:       journal,
		Logger:     s.log,
		DryRun:     args.DryRun,
	})

	report, err := walker.Run(ctx, args.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sanitize tree: %w", err)
	}

	journal.Summary(report)
	if s.config.LogFile != "" {
		if err := journal.WriteFile(filepath.Join(args.Root, s.config.LogFile), s.now()); err != nil {
			s.log.Warn("failed to write run log", zap.String("root", args.Root), zap.Error(err))
		}
	}

	return nil, report, nil
}

func (s *toolServer) CanonicalizeNamesTool(ctx context.Context, req *mcp.CallToolRequest, args CanonicalizeNamesParams) (*mcp.CallToolResult, any, error) {
	result := make(map[string]string, len(args.Names))
	for _, name := range args.Names {
		result[name] = s.sanitizer.Canonicalize(name)
	}
	return nil, result, nil
}

func (s *toolServer) ComparePathsTool(ctx context.Context, req *mcp.CallToolRequest, args ComparePathsParams) (*mcp.CallToolResult, any, error) {
	info, err := os.Lstat(args.PathA)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compare paths: %w", err)
	}

	var mismatch *Mismatch
	if info.IsDir() {
		mismatch, err = s.comparator.CompareDirs(args.PathA, args.PathB)
	} else {
		mismatch, err = s.comparator.CompareFiles(args.PathA, args.PathB)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compare paths: %w", err)
	}

	return nil, ComparePathsResult{Equal: mismatch == nil, Mismatch: mismatch}, nil
}

// RunMCPServer starts the MCP server implementation using the official Go SDK
// If transport is nil, it will use stdio transport
func RunMCPServer(configPath string, transport *mcp.InMemoryTransport) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := NewLogger(config.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tools := newToolServer(config, log)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "name-sweep",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sanitize_tree",
		Description: "Normalize every file and directory name below a root and merge identical duplicates",
	}, tools.SanitizeTreeTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "canonicalize_names",
		Description: "Return the canonical ASCII form of each given name",
	}, tools.CanonicalizeNamesTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_paths",
		Description: "Compare two files or directory trees by content",
	}, tools.ComparePathsTool)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if transport != nil {
		return server.Run(ctx, transport)
	}
	return server.Run(ctx, &mcp.StdioTransport{})
}
