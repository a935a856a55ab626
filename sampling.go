package img2ascii

import "fmt"

// SamplingPoint is a normalized (0-1) coordinate inside a character cell at
// which luminance is measured. (0, 0) is the top-left corner of the cell.
// Affects optionally lists the output dimensions a point influences; it is
// only meaningful for external points used by directional sampling.
type SamplingPoint struct {
	X       float64 `json:"x" toml:"x"`
	Y       float64 `json:"y" toml:"y"`
	Affects []int   `json:"affects,omitempty" toml:"affects"`
}

// SamplingConfig describes where and how a character cell is sampled. The
// number of Points is the dimensionality D of every vector built with it.
type SamplingConfig struct {
	Points         []SamplingPoint `json:"points"`
	ExternalPoints []SamplingPoint `json:"externalPoints,omitempty"`
	CircleRadius   float64         `json:"circleRadius"`
}

// Dimensions returns the vector dimensionality D defined by the config.
func (c SamplingConfig) Dimensions() int {
	return len(c.Points)
}

// Validate checks that the config defines at least one point, that every
// internal point lies inside the cell and that the radius is positive.
func (c SamplingConfig) Validate() error {
	if len(c.Points) == 0 {
		return ErrNoSamplingPoints
	}
	for i, p := range c.Points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return fmt.Errorf("sampling point %d (%.3f, %.3f) outside unit cell", i, p.X, p.Y)
		}
	}
	for i, p := range c.ExternalPoints {
		for _, d := range p.Affects {
			if d < 0 || d >= len(c.Points) {
				return fmt.Errorf("external point %d affects unknown dimension %d", i, d)
			}
		}
	}
	if c.CircleRadius <= 0 {
		return fmt.Errorf("circle radius must be positive, got %v", c.CircleRadius)
	}
	return nil
}

// GridSampling returns a config with cols x rows points at the centers of
// an even grid over the cell, in row-major order from the top-left.
func GridSampling(cols, rows int, radius float64) SamplingConfig {
	points := make([]SamplingPoint, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			points = append(points, SamplingPoint{
				X: (float64(c) + 0.5) / float64(cols),
				Y: (float64(r) + 0.5) / float64(rows),
			})
		}
	}
	return SamplingConfig{Points: points, CircleRadius: radius}
}

// DefaultSampling is the six-point layout (two columns, three rows) used
// for monospace text alphabets.
func DefaultSampling() SamplingConfig {
	return GridSampling(2, 3, 3)
}

// DirectionalSampling extends DefaultSampling with ten external points just
// outside the cell. Each external point is tagged with the internal
// dimensions it borders so that neighbouring cells can sharpen edges.
func DirectionalSampling() SamplingConfig {
	cfg := DefaultSampling()
	// Internal layout:
	//   0 1
	//   2 3
	//   4 5
	cfg.ExternalPoints = []SamplingPoint{
		{X: 0.25, Y: -0.1, Affects: []int{0}},
		{X: 0.75, Y: -0.1, Affects: []int{1}},
		{X: 1.1, Y: 1.0 / 6, Affects: []int{1}},
		{X: 1.1, Y: 0.5, Affects: []int{3}},
		{X: 1.1, Y: 5.0 / 6, Affects: []int{5}},
		{X: 0.75, Y: 1.1, Affects: []int{5}},
		{X: 0.25, Y: 1.1, Affects: []int{4}},
		{X: -0.1, Y: 5.0 / 6, Affects: []int{4}},
		{X: -0.1, Y: 0.5, Affects: []int{2}},
		{X: -0.1, Y: 1.0 / 6, Affects: []int{0}},
	}
	return cfg
}
