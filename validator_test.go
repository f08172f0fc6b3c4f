package namesweep_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	namesweep "github.com/thrawn01/name-sweep"
)

func TestDefaultValidator_ValidateRoot(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{"file.txt": "x"})
	validator := namesweep.NewDefaultValidator()

	tests := []struct {
		name        string
		path        string
		expectError string
	}{
		{name: "Directory", path: tempDir},
		{name: "Empty", path: "", expectError: "path cannot be empty"},
		{name: "Missing", path: filepath.Join(tempDir, "missing"), expectError: "invalid path"},
		{name: "File", path: filepath.Join(tempDir, "file.txt"), expectError: "is not a directory"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validator.ValidateRoot(test.path)
			if test.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expectError)
		})
	}
}

func TestDefaultValidator_ValidateConfig(t *testing.T) {
	validator := namesweep.NewDefaultValidator()

	tests := []struct {
		name        string
		modify      func(c *namesweep.Config)
		expectError string
	}{
		{
			name:   "Defaults",
			modify: func(c *namesweep.Config) {},
		},
		{
			name:        "ASCIIKey",
			modify:      func(c *namesweep.Config) { c.Substitutions["a"] = "b" },
			expectError: "must contain a non-ASCII character",
		},
		{
			name:        "EmptyKey",
			modify:      func(c *namesweep.Config) { c.Substitutions[""] = "b" },
			expectError: "empty key",
		},
		{
			name:        "NonASCIIValue",
			modify:      func(c *namesweep.Config) { c.Substitutions["ä"] = "ö" },
			expectError: "must be ASCII",
		},
		{
			name:   "EmptyValueRemovesCharacter",
			modify: func(c *namesweep.Config) { c.Substitutions["™"] = "" },
		},
		{
			name:        "LogFileWithDirectory",
			modify:      func(c *namesweep.Config) { c.LogFile = "logs/run.txt" },
			expectError: "log_file must be a file name",
		},
		{
			name:   "LogFileDisabled",
			modify: func(c *namesweep.Config) { c.LogFile = "" },
		},
		{
			name:        "UnknownLogLevel",
			modify:      func(c *namesweep.Config) { c.LogLevel = "loud" },
			expectError: "invalid log_level",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := namesweep.DefaultConfig()
			test.modify(config)

			err := validator.ValidateConfig(config)
			if test.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expectError)
		})
	}

	t.Run("Nil", func(t *testing.T) {
		assert.Error(t, validator.ValidateConfig(nil))
	})
}

func TestDefaultValidator_ValidateCanonicalName(t *testing.T) {
	validator := namesweep.NewDefaultValidator()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "Plain", input: "report.txt", valid: true},
		{name: "Hidden", input: ".profile", valid: true},
		{name: "ThreeDots", input: "...", valid: true},
		{name: "Empty", input: ""},
		{name: "Dot", input: "."},
		{name: "DotDot", input: ".."},
		{name: "Slash", input: "a/b"},
		{name: "NUL", input: "a\x00b"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validator.ValidateCanonicalName(test.input)
			if test.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, namesweep.ErrUnrepresentableName))
		})
	}
}
