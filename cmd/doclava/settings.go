package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vijaygarry/doclava/internal/cache"
	"github.com/vijaygarry/doclava/internal/config"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/observ"
	"github.com/vijaygarry/doclava/internal/pipeline"
)

// settings merges doclava.toml with command-line flags. Flags win.
type settings struct {
	file *config.File // nil when no settings file was found
	cfg  config.Config
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return settings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var f *config.File
	if path != "" {
		f, err = config.Load(path)
	} else {
		f, _, err = config.Discover(".")
	}
	if err != nil {
		return settings{}, err
	}
	s := settings{file: f}
	if f != nil {
		s.cfg = f.Config
	}
	return s, nil
}

type levelOverride struct {
	codes []int
	sev   diag.Severity
}

// registryFactory reads the level flags once and returns a constructor for
// identically configured registries.
func (s settings) registryFactory(cmd *cobra.Command) (func() *diag.Registry, error) {
	pf := cmd.Root().PersistentFlags()
	overrides := make([]levelOverride, 0, 3)
	for _, item := range []struct {
		flag string
		sev  diag.Severity
	}{
		{"hide", diag.SevHidden},
		{"warning", diag.SevWarning},
		{"error", diag.SevError},
	} {
		codes, err := pf.GetIntSlice(item.flag)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", item.flag, err)
		}
		for _, n := range codes {
			if _, err := diag.ParseCode(strconv.Itoa(n)); err != nil {
				return nil, fmt.Errorf("--%s: %w", item.flag, err)
			}
		}
		overrides = append(overrides, levelOverride{codes: codes, sev: item.sev})
	}
	werror, err := pf.GetBool("warnings-as-errors")
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	werror = werror || s.cfg.Diagnostics.WarningsAsErrors
	diagCfg := s.cfg.Diagnostics

	return func() *diag.Registry {
		reg := diag.NewRegistry()
		diagCfg.Apply(reg)
		for _, o := range overrides {
			for _, n := range o.codes {
				reg.SetLevel(diag.Code(n), o.sev)
			}
		}
		reg.SetWarningsAsErrors(werror)
		return reg
	}, nil
}

// maxDiagnostics is the flag when set, else the config value.
func (s settings) maxDiagnostics(cmd *cobra.Command) (int, error) {
	pf := cmd.Root().PersistentFlags()
	n, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !pf.Changed("max-diagnostics") {
		n = s.cfg.Diagnostics.Max
	}
	return n, nil
}

// hiddenPackages merges config and --hidden-package, without duplicates.
func (s settings) hiddenPackages(cmd *cobra.Command) ([]string, error) {
	extra, err := cmd.Flags().GetStringSlice("hidden-package")
	if err != nil {
		return nil, fmt.Errorf("failed to get hidden-package flag: %w", err)
	}
	out := slices.Clone(s.cfg.Closure.HiddenPackages)
	for _, p := range extra {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

type loaderFlags struct {
	cache    bool
	timings  bool
	progress pipeline.ProgressSink
}

// newLoader builds the pipeline loader shared by every command.
func (s settings) newLoader(cmd *cobra.Command, lf loaderFlags) (*pipeline.Loader, error) {
	hidden, err := s.hiddenPackages(cmd)
	if err != nil {
		return nil, err
	}
	opts := pipeline.LoaderOptions{HiddenPackages: hidden, Progress: lf.progress}
	if lf.timings {
		opts.Timer = observ.NewTimer()
	}
	if lf.cache {
		dc, err := cache.Open("doclava")
		if err != nil {
			fmt.Fprintf(os.Stderr, "doclava: cache disabled: %v\n", err)
		} else {
			opts.Cache = dc
		}
	}
	return pipeline.NewLoader(opts)
}

func boolFlagOr(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !cmd.Flags().Changed(name) {
		return fallback, nil
	}
	return v, nil
}

func intFlagOr(cmd *cobra.Command, name string, fallback int) (int, error) {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !cmd.Flags().Changed(name) && fallback > 0 {
		return fallback, nil
	}
	return v, nil
}
