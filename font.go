package img2ascii

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontFamily is the bundled monospace font used when a profile does
// not name font files.
const DefaultFontFamily = "Go Mono"

// builtinFonts are the TrueType fonts compiled into the binary.
var builtinFonts = map[string][]byte{
	"go mono":      gomono.TTF,
	"go mono bold": gomonobold.TTF,
	"go regular":   goregular.TTF,
}

// FontSource names a font family and the candidate files it may be loaded
// from. Candidates are tried in order; the first one that exists wins.
type FontSource struct {
	Family string   `toml:"family"`
	Paths  []string `toml:"paths"`
}

// LoadFont resolves a FontSource to a parsed TrueType font. Without
// candidate paths the family must be one of the bundled fonts. A source
// whose files are missing everywhere fails with *FontRegistrationError.
func LoadFont(src FontSource) (*truetype.Font, error) {
	family := src.Family
	if family == "" {
		family = DefaultFontFamily
	}

	if len(src.Paths) == 0 {
		data, ok := builtinFonts[strings.ToLower(family)]
		if !ok {
			return nil, &FontRegistrationError{
				Family: family,
				cause:  errors.New("no candidate paths and no bundled font of that name"),
			}
		}
		return parseFont(family, data)
	}

	var lastErr error
	for _, path := range src.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			lastErr = err
			continue
		}
		f, err := parseFont(family, data)
		if err != nil {
			return nil, &FontRegistrationError{Family: family, Candidates: []string{path}, cause: err}
		}
		return f, nil
	}

	return nil, &FontRegistrationError{Family: family, Candidates: src.Paths, cause: lastErr}
}

func parseFont(family string, data []byte) (*truetype.Font, error) {
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", family, err)
	}
	return f, nil
}
