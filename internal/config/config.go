// Package config loads doclava.toml, the per-project settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vijaygarry/doclava/internal/diag"
)

// FileName is the settings file searched for by Find.
const FileName = "doclava.toml"

// Config mirrors doclava.toml.
type Config struct {
	Diagnostics Diagnostics `toml:"diagnostics"`
	Closure     Closure     `toml:"closure"`
	Check       Check       `toml:"check"`
}

// Diagnostics adjusts the registry.
type Diagnostics struct {
	WarningsAsErrors bool  `toml:"warnings_as_errors"`
	Hide             []int `toml:"hide"`
	Warning          []int `toml:"warning"`
	Error            []int `toml:"error"`
	Max              int   `toml:"max"`
}

// Closure configures visibility.
type Closure struct {
	HiddenPackages []string `toml:"hidden_packages"`
	StubPackages   []string `toml:"stub_packages"`
}

// Check configures compatibility runs.
type Check struct {
	Jobs     int  `toml:"jobs"`
	ShowDiff bool `toml:"show_diff"`
	Cache    bool `toml:"cache"`
}

// File is a loaded settings file.
type File struct {
	Path   string
	Root   string
	Config Config
}

// Find walks up from startDir to locate doclava.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest doclava.toml. ok is false when none
// exists, which is not an error.
func Discover(startDir string) (*File, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	f, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return f, true, nil
}

// Load decodes the settings file at path.
func Load(path string) (*File, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("check", "jobs") && cfg.Check.Jobs < 1 {
		return nil, fmt.Errorf("%s: [check].jobs must be at least 1", path)
	}
	if meta.IsDefined("diagnostics", "max") && cfg.Diagnostics.Max < 0 {
		return nil, fmt.Errorf("%s: [diagnostics].max must not be negative", path)
	}
	for _, list := range [][]int{cfg.Diagnostics.Hide, cfg.Diagnostics.Warning, cfg.Diagnostics.Error} {
		for _, n := range list {
			if _, err := diag.ParseCode(strconv.Itoa(n)); err != nil {
				return nil, fmt.Errorf("%s: [diagnostics]: %w", path, err)
			}
		}
	}
	return &File{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// Apply configures reg from the [diagnostics] table. Levels are applied
// in hide, warning, error order, so a code listed twice ends at the
// stricter level.
func (d Diagnostics) Apply(reg *diag.Registry) {
	for _, item := range []struct {
		codes []int
		sev   diag.Severity
	}{
		{d.Hide, diag.SevHidden},
		{d.Warning, diag.SevWarning},
		{d.Error, diag.SevError},
	} {
		for _, n := range item.codes {
			reg.SetLevel(diag.Code(n), item.sev)
		}
	}
	if d.WarningsAsErrors {
		reg.SetWarningsAsErrors(true)
	}
}
