package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

type renderOpts struct {
	profile     string
	output      string
	width       int
	scale       float64
	sharpen     bool
	cacheLevels int
	fontFamily  string
	fontPaths   []string
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [image]",
		Short: "Convert an image to ASCII art",
		Long: `Render loads an image (PNG, JPEG, GIF or TIFF), scales it to a grid of
character cells, and replaces every cell with the profile character whose
shape matches best.

Output is written to stdout unless --output is set. An output path ending
in .png draws the text with the profile's font instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "", "alphabet profile (.json or .json.zst)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.txt or .png)")
	cmd.Flags().IntVarP(&opts.width, "width", "W", 80, "output width in characters")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2.0, "character aspect scale factor")
	cmd.Flags().BoolVar(&opts.sharpen, "sharpen", false, "sharpen the image after scaling")
	cmd.Flags().IntVar(&opts.cacheLevels, "cache-levels", 0, "enable approximate lookup cache with N levels per sample")
	cmd.Flags().StringVar(&opts.fontFamily, "font", "", "font family for PNG output (default: profile font)")
	cmd.Flags().StringSliceVar(&opts.fontPaths, "font-path", nil, "font file candidates for PNG output")
	cmd.MarkFlagRequired("profile")

	return cmd
}

func runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	r, err := img2ascii.NewRenderer(
		img2ascii.WithProfile(opts.profile),
		img2ascii.WithOutputWidth(opts.width),
		img2ascii.WithScaleFactor(opts.scale),
		img2ascii.WithSharpen(opts.sharpen),
		img2ascii.WithCacheLevels(opts.cacheLevels),
		img2ascii.WithRendererLogger(logger),
	)
	if err != nil {
		return err
	}

	text, err := r.RenderFile(input)
	if err != nil {
		return err
	}

	stats := r.Stats()
	if opts.cacheLevels > 0 {
		logger.Debug("lookup cache",
			"entries", stats.Cache.Entries,
			"hits", stats.Cache.Hits,
			"misses", stats.Cache.Misses,
			"rate", fmt.Sprintf("%.1f%%", stats.Cache.HitRate()*100))
	}

	switch {
	case opts.output == "":
		fmt.Fprintln(cmd.OutOrStdout(), text)
	case strings.EqualFold(filepath.Ext(opts.output), ".png"):
		if err := writePreview(r.Index().Profile(), text, opts); err != nil {
			return err
		}
	default:
		if err := os.WriteFile(opts.output, []byte(text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	prog.done(fmt.Sprintf("Rendered %s", filepath.Base(input)))
	return nil
}

// writePreview draws text with the profile's font and cell size.
func writePreview(profile *img2ascii.AlphabetProfile, text string, opts renderOpts) error {
	md := profile.Metadata
	if md.Width <= 0 || md.Height <= 0 || md.FontSize <= 0 {
		return errors.New("profile does not record a cell size and font size")
	}
	family := opts.fontFamily
	if family == "" {
		family = md.Font
	}

	f, err := img2ascii.LoadFont(img2ascii.FontSource{Family: family, Paths: opts.fontPaths})
	if err != nil {
		return err
	}
	rast, err := img2ascii.NewRasterizer(f, img2ascii.RasterOptions{
		Width:    md.Width,
		Height:   md.Height,
		FontSize: md.FontSize,
	})
	if err != nil {
		return err
	}

	img, err := img2ascii.RenderTextImage(text, rast, md.Width, md.Height)
	if err != nil {
		return err
	}
	return imageutil.SavePNG(img.RGBA, opts.output)
}
