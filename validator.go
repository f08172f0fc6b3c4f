package namesweep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Validator interface {
	ValidateRoot(path string) error
	ValidateConfig(config *Config) error
	ValidateCanonicalName(name string) error
}

type DefaultValidator struct{}

func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

func (v *DefaultValidator) ValidateRoot(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	return nil
}

func (v *DefaultValidator) ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	for from, to := range config.Substitutions {
		if from == "" {
			return fmt.Errorf("substitutions: empty key")
		}
		// An ASCII key would be rewritten again on a second pass.
		if isASCII(from) {
			return fmt.Errorf("substitutions: key %q must contain a non-ASCII character", from)
		}
		if !isASCII(to) {
			return fmt.Errorf("substitutions: value %q for %q must be ASCII", to, from)
		}
	}

	if config.LogFile != "" && (strings.ContainsRune(config.LogFile, filepath.Separator) || strings.Contains(config.LogFile, "/")) {
		return fmt.Errorf("log_file must be a file name, got %q", config.LogFile)
	}

	switch config.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", config.LogLevel)
	}

	return nil
}

// ValidateCanonicalName rejects canonical names that cannot be used as a
// sibling of the original entry.
func (v *DefaultValidator) ValidateCanonicalName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrUnrepresentableName
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator), strings.ContainsRune(name, 0):
		return ErrUnrepresentableName
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
