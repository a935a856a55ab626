package img2ascii

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// BuildProfile renders, samples, normalizes and (when Count is set)
// diversity-filters the characters of one profile configuration. Font
// problems surface as *FontRegistrationError.
func BuildProfile(ctx context.Context, pc ProfileConfig, opts ...FeatureOption) (*AlphabetProfile, error) {
	chars, err := ResolveCharacters(pc.Charsets, pc.Characters)
	if err != nil {
		return nil, err
	}
	sampling, err := pc.SamplingConfig()
	if err != nil {
		return nil, err
	}

	f, err := LoadFont(pc.Font.Source())
	if err != nil {
		return nil, err
	}
	rast, err := NewRasterizer(f, RasterOptions{
		Width:      pc.Width,
		Height:     pc.Height,
		FontSize:   pc.Font.Size,
		BlurRadius: pc.Blur,
	})
	if err != nil {
		return nil, err
	}

	if pc.DebugDir != "" {
		opts = append(opts, WithDebugDir(pc.DebugDir))
	}
	vectors, scales, err := NewFeatureBuilder(rast, sampling, opts...).Build(ctx, chars)
	if err != nil {
		return nil, err
	}
	if pc.Count > 0 {
		vectors = SelectDiverse(vectors, pc.Count)
	}

	profile := &AlphabetProfile{
		Metadata: Metadata{
			Name:           pc.Name,
			Font:           pc.Font.Family,
			SamplingConfig: sampling,
			Scales:         scales,
			FontSize:       pc.Font.Size,
			Width:          pc.Width,
			Height:         pc.Height,
		},
		Characters: vectors,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// BuildResult is the outcome of building one profile.
type BuildResult struct {
	Name     string
	Output   string
	Profile  *AlphabetProfile
	Duration time.Duration
	Err      error
}

// BuildAll builds and saves every profile of cfg in order. A failing
// profile is logged and recorded in its result but does not stop the
// others; the returned error joins all failures. Cancellation of ctx stops
// the remaining profiles.
func BuildAll(ctx context.Context, cfg *BuildConfig, logger *log.Logger) ([]BuildResult, error) {
	if logger == nil {
		logger = log.Default()
	}

	opts := []FeatureOption{WithFeatureLogger(logger)}
	if cfg.Workers > 0 {
		opts = append(opts, WithWorkers(cfg.Workers))
	}

	results := make([]BuildResult, 0, len(cfg.Profiles))
	var errs []error
	for _, pc := range cfg.Profiles {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res := BuildResult{Name: pc.Name, Output: cfg.OutputPath(pc)}
		start := time.Now()
		logger.Info("building profile", "name", pc.Name, "font", pc.Font.Family)

		res.Profile, res.Err = BuildProfile(ctx, pc, opts...)
		if res.Err == nil {
			res.Err = saveProfile(res.Profile, res.Output)
		}
		res.Duration = time.Since(start)

		if res.Err != nil {
			logger.Error("profile build failed", "name", pc.Name, "err", res.Err)
			errs = append(errs, fmt.Errorf("profile %q: %w", pc.Name, res.Err))
		} else {
			logger.Info("profile saved",
				"name", pc.Name,
				"path", res.Output,
				"characters", len(res.Profile.Characters),
				"duration", res.Duration.Round(time.Millisecond))
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func saveProfile(p *AlphabetProfile, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	return p.SaveProfile(path)
}
