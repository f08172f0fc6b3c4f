package namesweep

import (
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultLogFile = "log.txt"

type Config struct {
	Substitutions map[string]string `yaml:"substitutions"`
	FoldCase      bool              `yaml:"fold_case"`
	ExcludeDirs   []string          `yaml:"exclude_dirs"`
	LogFile       string            `yaml:"log_file"`
	LogLevel      string            `yaml:"log_level"`
}

// DefaultSubstitutions maps letters that NFKD leaves intact, or that have a
// conventional spelling, to ASCII.
func DefaultSubstitutions() map[string]string {
	return map[string]string{
		"ñ": "n",
		"Ñ": "N",
		"ß": "ss",
		"æ": "ae",
		"Æ": "AE",
		"œ": "oe",
		"Œ": "OE",
		"ø": "o",
		"Ø": "O",
		"đ": "d",
		"Đ": "D",
		"ł": "l",
		"Ł": "L",
		"þ": "th",
		"Þ": "Th",
	}
}

func DefaultConfig() *Config {
	return &Config{
		Substitutions: DefaultSubstitutions(),
		ExcludeDirs:   []string{".git"},
		LogFile:       DefaultLogFile,
		LogLevel:      "error",
	}
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if err := NewDefaultValidator().ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}
