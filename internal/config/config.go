// Package config loads hcsave settings.
//
// Settings come from a single YAML file named by:
//   - the --config flag, or
//   - the HCSAVE_CONFIG environment variable.
//
// When neither is set the built-in defaults apply. There is no search
// path. Command-line flags that were set explicitly override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dadrian/hcsave/output"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "HCSAVE_CONFIG"

// Config holds the settings for one run.
type Config struct {
	// Format is the output format: json, yaml or cbor.
	Format string `yaml:"format"`

	// Indent is the number of spaces per indentation level for json and
	// yaml output.
	Indent int `yaml:"indent"`

	// Compact writes json on a single line.
	Compact bool `yaml:"compact"`

	// KeepOmitted keeps unknown and reference values as nulls instead of
	// dropping them.
	KeepOmitted bool `yaml:"keep_omitted"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// SaveDataKey is the envelope key wrapping the decoded tree.
	SaveDataKey string `yaml:"save_data_key"`

	// SaveDir overrides the located game save directory.
	SaveDir string `yaml:"save_dir"`

	// OutfitsPath overrides the outfits file, outfits.json in the save
	// directory by default.
	OutfitsPath string `yaml:"outfits_path"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Format:      string(output.JSON),
		Indent:      2,
		LogLevel:    "warn",
		SaveDataKey: "save_data_key",
	}
}

// Load reads the file at path, or at $HCSAVE_CONFIG when path is empty.
// With neither, it returns Default. The result is not validated; callers
// apply their overrides first and then call Validate.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cfg.parse(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// parse overlays the YAML document in data onto c. Unknown keys are
// rejected.
func (c *Config) parse(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := output.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}

	if c.Indent < 0 || c.Indent > 16 {
		errs = append(errs, fmt.Errorf("indent must be between 0 and 16, got %d", c.Indent))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if c.SaveDataKey == "" {
		errs = append(errs, fmt.Errorf("save_data_key is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q (want debug, info, warn or error)", name)
	}
}
