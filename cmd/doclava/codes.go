package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vijaygarry/doclava/internal/diag"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List diagnostic codes and their effective levels",
	Long: `Codes prints every diagnostic code with the level it resolves to after
doclava.toml and the --hide/--warning/--error flags are applied.`,
	Args: cobra.NoArgs,
	RunE: runCodes,
}

func init() {
	codesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type codePayload struct {
	ID      string `json:"id"`
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Level   string `json:"level"`
	Default string `json:"default"`
	Title   string `json:"title"`
}

func runCodes(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	newRegistry, err := s.registryFactory(cmd)
	if err != nil {
		return err
	}
	colorStr, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	cm, err := readColorMode(colorStr)
	if err != nil {
		return err
	}

	reg := newRegistry()
	switch strings.ToLower(format) {
	case "json":
		return renderCodesJSON(cmd.OutOrStdout(), reg)
	case "pretty":
		return renderCodes(cmd.OutOrStdout(), reg, cm.enabled(os.Stdout))
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func renderCodes(w io.Writer, reg *diag.Registry, colored bool) error {
	for _, c := range diag.AllCodes() {
		level := reg.Level(c)
		levelText := fmt.Sprintf("%-7s", level)
		if colored {
			levelText = levelColor(level).Sprint(levelText)
		}
		mark := " "
		if level != c.DefaultLevel() {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %3d  %-22s %s%s %s\n", c.ID(), int(c), c.Name(), levelText, mark, c.Title()); err != nil {
			return err
		}
	}
	return nil
}

func renderCodesJSON(w io.Writer, reg *diag.Registry) error {
	codes := diag.AllCodes()
	payload := make([]codePayload, 0, len(codes))
	for _, c := range codes {
		payload = append(payload, codePayload{
			ID:      c.ID(),
			Code:    int(c),
			Name:    c.Name(),
			Level:   reg.Level(c).String(),
			Default: c.DefaultLevel().String(),
			Title:   c.Title(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func levelColor(sev diag.Severity) *color.Color {
	var c *color.Color
	switch sev {
	case diag.SevError:
		c = color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.Faint)
	}
	c.EnableColor()
	return c
}
