// Package config builds the immutable run configuration. Values are layered
// in fixed precedence: named preset, then environment, then the JSON config
// file, then CLI flags (highest wins). The core packages only ever read the
// resulting snapshot.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/scan2pdf/internal/layout"
)

//go:embed presets.yaml
var presetsYAML []byte

// Environment variables understood by the CLI.
const (
	EnvSourceDir = "SCAN2PDF_SOURCE_DIR"
	EnvOutputDir = "SCAN2PDF_OUTPUT_DIR"
	EnvConfig    = "SCAN2PDF_CONFIG"
)

// ErrConfiguration marks fatal configuration problems. They abort the run
// before any document is built.
var ErrConfiguration = errors.New("configuration error")

// Compression controls the preprocessing stage.
type Compression struct {
	Enabled    bool
	MaxWidth   int
	MaxHeight  int
	Quality    int
	AutoRotate bool
}

// Config is the immutable snapshot consumed by one run.
type Config struct {
	PageSize    string
	FillMode    layout.FillMode
	Margin      float64        // uniform margin in points for fit/stretch/crop
	Margins     layout.Margins // asymmetric margins for the custom mode
	Background  [3]int         // page background RGB
	Label       bool           // print file names in the bottom margin
	Compression Compression
	Extensions  []string
}

// FillSpec returns the layout parameters of this configuration.
func (c *Config) FillSpec() layout.FillSpec {
	return layout.FillSpec{Mode: c.FillMode, Margin: c.Margin, Margins: c.Margins}
}

// preset mirrors one entry of the embedded presets.yaml.
type preset struct {
	PageSize   string   `yaml:"page_size"`
	FillMode   string   `yaml:"fill_mode"`
	Margin     float64  `yaml:"margin"`
	Background []int    `yaml:"background"`
	Label      bool     `yaml:"label"`
	Compress   bool     `yaml:"compress"`
	MaxWidth   int      `yaml:"max_width"`
	MaxHeight  int      `yaml:"max_height"`
	Quality    int      `yaml:"quality"`
	AutoRotate bool     `yaml:"auto_rotate"`
	Extensions []string `yaml:"extensions"`
}

type presetFile struct {
	Presets map[string]preset `yaml:"presets"`
}

func loadPresets() map[string]preset {
	var pf presetFile
	if err := yaml.Unmarshal(presetsYAML, &pf); err != nil {
		// Embedded file; a parse failure is a build defect.
		panic("failed to unmarshal embedded presets.yaml: " + err.Error())
	}
	return pf.Presets
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	presets := loadPresets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromPreset returns the configuration for a named preset.
func FromPreset(name string) (*Config, error) {
	p, ok := loadPresets()[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q (available: %s)",
			ErrConfiguration, name, strings.Join(PresetNames(), ", "))
	}

	mode, err := layout.ParseFillMode(p.FillMode)
	if err != nil {
		return nil, fmt.Errorf("%w: preset %s: %v", ErrConfiguration, name, err)
	}

	cfg := &Config{
		PageSize:   p.PageSize,
		FillMode:   mode,
		Margin:     p.Margin,
		Background: [3]int{255, 255, 255},
		Label:      p.Label,
		Compression: Compression{
			Enabled:    p.Compress,
			MaxWidth:   p.MaxWidth,
			MaxHeight:  p.MaxHeight,
			Quality:    p.Quality,
			AutoRotate: p.AutoRotate,
		},
		Extensions: p.Extensions,
	}
	if len(p.Background) == 3 {
		cfg.Background = [3]int{p.Background[0], p.Background[1], p.Background[2]}
	}
	return cfg, nil
}

// MarginsOverride mirrors the margins object of the JSON config file.
type MarginsOverride struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// FileOverrides mirrors the JSON config file. Pointer fields distinguish
// "absent" from zero so the file only overrides what it actually sets.
type FileOverrides struct {
	PageSize   *string          `json:"page_size"`
	FillMode   *string          `json:"fill_mode"`
	Margin     *float64         `json:"margin"`
	Margins    *MarginsOverride `json:"margins"`
	Background *[3]int          `json:"background"`
	Label      *bool            `json:"label"`
	Compress   *bool            `json:"compress"`
	MaxWidth   *int             `json:"max_width"`
	MaxHeight  *int             `json:"max_height"`
	Quality    *int             `json:"quality"`
	AutoRotate *bool            `json:"auto_rotate"`
	Extensions []string         `json:"extensions"`
}

// ApplyFile merges the JSON config file at path into cfg.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: cannot read config file %s: %v", ErrConfiguration, path, err)
	}

	var ov FileOverrides
	if err := json.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("%w: cannot parse config file %s: %v", ErrConfiguration, path, err)
	}

	if ov.PageSize != nil {
		c.PageSize = *ov.PageSize
	}
	if ov.FillMode != nil {
		mode, err := layout.ParseFillMode(*ov.FillMode)
		if err != nil {
			return fmt.Errorf("%w: config file %s: %v", ErrConfiguration, path, err)
		}
		c.FillMode = mode
	}
	if ov.Margin != nil {
		c.Margin = *ov.Margin
	}
	if ov.Margins != nil {
		c.Margins = layout.Margins{
			Top:    ov.Margins.Top,
			Bottom: ov.Margins.Bottom,
			Left:   ov.Margins.Left,
			Right:  ov.Margins.Right,
		}
	}
	if ov.Background != nil {
		c.Background = *ov.Background
	}
	if ov.Label != nil {
		c.Label = *ov.Label
	}
	if ov.Compress != nil {
		c.Compression.Enabled = *ov.Compress
	}
	if ov.MaxWidth != nil {
		c.Compression.MaxWidth = *ov.MaxWidth
	}
	if ov.MaxHeight != nil {
		c.Compression.MaxHeight = *ov.MaxHeight
	}
	if ov.Quality != nil {
		c.Compression.Quality = *ov.Quality
	}
	if ov.AutoRotate != nil {
		c.Compression.AutoRotate = *ov.AutoRotate
	}
	if len(ov.Extensions) > 0 {
		c.Extensions = ov.Extensions
	}
	return nil
}

// ValidateDirs checks that the source directory exists and that the output
// directory exists or can be created.
func ValidateDirs(sourceDir, outputDir string) error {
	if sourceDir == "" {
		return fmt.Errorf("%w: source directory is required (--source-dir or %s)", ErrConfiguration, EnvSourceDir)
	}
	info, err := os.Stat(sourceDir)
	if err != nil {
		return fmt.Errorf("%w: invalid source directory %s: %v", ErrConfiguration, sourceDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: source path %s is not a directory", ErrConfiguration, sourceDir)
	}

	if outputDir == "" {
		return fmt.Errorf("%w: output directory is required (--output-dir or %s)", ErrConfiguration, EnvOutputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create output directory %s: %v", ErrConfiguration, outputDir, err)
	}
	return nil
}
