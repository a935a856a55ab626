package img2ascii

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Profile defaults applied by LoadBuildConfig.
const (
	DefaultCellWidth  = defaultCellWidth
	DefaultCellHeight = defaultCellHeight
	DefaultFontSize   = 13.0
)

// Sampling presets selectable from a build config.
const (
	SamplingDefault     = "default"
	SamplingDirectional = "directional"
	SamplingGrid        = "grid"
	SamplingCustom      = "custom"
)

// BuildConfig is the offline build configuration: a list of profiles,
// each built and saved independently.
//
//	output_dir = "profiles"
//	workers = 4
//
//	[[profile]]
//	name = "ascii"
//	charsets = ["ascii"]
//	count = 64
//	output = "ascii.json.zst"
//	[profile.font]
//	family = "Go Mono"
//	size = 13
type BuildConfig struct {
	OutputDir string          `toml:"output_dir"`
	Workers   int             `toml:"workers"`
	Profiles  []ProfileConfig `toml:"profile"`
}

// FontConfig selects the font a profile is rendered with.
type FontConfig struct {
	Family string   `toml:"family"`
	Paths  []string `toml:"paths"`
	Size   float64  `toml:"size"`
}

// Source returns the font lookup for this config.
func (f FontConfig) Source() FontSource {
	return FontSource{Family: f.Family, Paths: f.Paths}
}

// ProfileConfig describes one alphabet profile to build.
type ProfileConfig struct {
	Name       string     `toml:"name"`
	Charsets   []string   `toml:"charsets"`
	Characters string     `toml:"characters"`
	Font       FontConfig `toml:"font"`

	// Cell size in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	Blur         float64 `toml:"blur"`
	CircleRadius float64 `toml:"circle_radius"`

	// Sampling is one of "default", "directional", "grid" (GridColumns x
	// GridRows) or "custom" (Points). Empty means "custom" when Points is
	// set and "default" otherwise.
	Sampling    string          `toml:"sampling"`
	GridColumns int             `toml:"grid_columns"`
	GridRows    int             `toml:"grid_rows"`
	Points      []SamplingPoint `toml:"points"`

	// Count is the number of characters kept by diversity selection; zero
	// keeps them all.
	Count int `toml:"count"`

	Output   string `toml:"output"`
	DebugDir string `toml:"debug_dir"`
}

// LoadBuildConfig reads a TOML build configuration from path, applies
// defaults and validates it. Unknown keys are rejected.
func LoadBuildConfig(path string) (*BuildConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build config: %w", err)
	}
	cfg, err := ParseBuildConfig(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseBuildConfig decodes a TOML build configuration.
func ParseBuildConfig(data string) (*BuildConfig, error) {
	var cfg BuildConfig
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse build config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in build config: %s", strings.Join(keys, ", "))
	}

	for i := range cfg.Profiles {
		cfg.Profiles[i].applyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every profile is buildable and that profile names
// and outputs are unique.
func (c *BuildConfig) Validate() error {
	if len(c.Profiles) == 0 {
		return errors.New("build config defines no profiles")
	}
	names := make(map[string]bool, len(c.Profiles))
	outputs := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate profile name %q", p.Name)
		}
		names[p.Name] = true
		out := c.OutputPath(p)
		if outputs[out] {
			return fmt.Errorf("profile %q: output %s already used", p.Name, out)
		}
		outputs[out] = true
	}
	return nil
}

// OutputPath returns where profile p is saved.
func (c *BuildConfig) OutputPath(p ProfileConfig) string {
	if c.OutputDir == "" || filepath.IsAbs(p.Output) {
		return p.Output
	}
	return filepath.Join(c.OutputDir, p.Output)
}

func (p *ProfileConfig) applyDefaults() {
	if p.Width == 0 {
		p.Width = DefaultCellWidth
	}
	if p.Height == 0 {
		p.Height = DefaultCellHeight
	}
	if p.Font.Size == 0 {
		p.Font.Size = DefaultFontSize
	}
	if p.Font.Family == "" {
		p.Font.Family = DefaultFontFamily
	}
	if p.Sampling == "" {
		p.Sampling = SamplingDefault
		if len(p.Points) > 0 {
			p.Sampling = SamplingCustom
		}
	}
	if p.Output == "" && p.Name != "" {
		p.Output = p.Name + ".json"
	}
}

// Validate checks a single profile after defaults have been applied.
func (p ProfileConfig) Validate() error {
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	if len(p.Charsets) == 0 && p.Characters == "" {
		return fmt.Errorf("profile %q: %w", p.Name, ErrEmptyAlphabet)
	}
	for _, name := range p.Charsets {
		if _, err := Charset(name); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("profile %q: invalid cell size %dx%d", p.Name, p.Width, p.Height)
	}
	if p.Font.Size <= 0 {
		return fmt.Errorf("profile %q: invalid font size %v", p.Name, p.Font.Size)
	}
	if p.Blur < 0 {
		return fmt.Errorf("profile %q: negative blur radius", p.Name)
	}
	if p.Count < 0 {
		return fmt.Errorf("profile %q: negative count", p.Name)
	}
	sampling, err := p.SamplingConfig()
	if err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if err := sampling.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}

// SamplingConfig resolves the profile's sampling preset. A non-zero
// CircleRadius overrides the preset's radius.
func (p ProfileConfig) SamplingConfig() (SamplingConfig, error) {
	var cfg SamplingConfig
	switch p.Sampling {
	case SamplingDefault, "":
		cfg = DefaultSampling()
	case SamplingDirectional:
		cfg = DirectionalSampling()
	case SamplingGrid:
		if p.GridColumns <= 0 || p.GridRows <= 0 {
			return SamplingConfig{}, fmt.Errorf("grid sampling needs positive grid_columns and grid_rows")
		}
		cfg = GridSampling(p.GridColumns, p.GridRows, DefaultSampling().CircleRadius)
	case SamplingCustom:
		if len(p.Points) == 0 {
			return SamplingConfig{}, ErrNoSamplingPoints
		}
		cfg = SamplingConfig{
			Points:       append([]SamplingPoint(nil), p.Points...),
			CircleRadius: DefaultSampling().CircleRadius,
		}
	default:
		return SamplingConfig{}, fmt.Errorf("unknown sampling preset %q", p.Sampling)
	}
	if p.CircleRadius != 0 {
		cfg.CircleRadius = p.CircleRadius
	}
	return cfg, nil
}
