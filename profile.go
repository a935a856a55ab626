package img2ascii

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rivo/uniseg"
)

// CharacterVector pairs a single grapheme with its lightness vector.
type CharacterVector struct {
	Char   string    `json:"char"`
	Vector []float64 `json:"vector"`
}

// Clone returns a deep copy of the character vector.
func (cv CharacterVector) Clone() CharacterVector {
	return CharacterVector{Char: cv.Char, Vector: slices.Clone(cv.Vector)}
}

// Metadata records how an AlphabetProfile was generated.
type Metadata struct {
	Name           string         `json:"name,omitempty"`
	Font           string         `json:"font,omitempty"`
	SamplingConfig SamplingConfig `json:"samplingConfig"`
	// Scales holds the per-dimension maxima the stored vectors were
	// normalized by. Sampled luminance is divided by them before matching.
	// Zero or missing entries leave a dimension unscaled.
	Scales         []float64      `json:"scales,omitempty"`
	FontSize       float64        `json:"fontSize"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
}

// AlphabetProfile is the persisted set of characters and their vectors,
// together with the sampling configuration that produced them. A profile
// is immutable once saved.
type AlphabetProfile struct {
	Metadata   Metadata          `json:"metadata"`
	Characters []CharacterVector `json:"characters"`
}

// Dimensions returns the vector dimensionality of the profile.
func (p *AlphabetProfile) Dimensions() int {
	return p.Metadata.SamplingConfig.Dimensions()
}

// Validate checks that the profile is non-empty, that every character is
// a single grapheme and that every vector has the configured dimensionality.
func (p *AlphabetProfile) Validate() error {
	if len(p.Characters) == 0 {
		return ErrEmptyAlphabet
	}
	dims := p.Dimensions()
	if dims == 0 {
		return ErrNoSamplingPoints
	}
	if n := len(p.Metadata.Scales); n != 0 && n != dims {
		return fmt.Errorf("scales: %w", &DimensionMismatchError{Expected: dims, Actual: n})
	}
	for i, cv := range p.Characters {
		if uniseg.GraphemeClusterCount(cv.Char) != 1 {
			return fmt.Errorf("character %d (%q): %w", i, cv.Char, ErrInvalidGrapheme)
		}
		if len(cv.Vector) != dims {
			return fmt.Errorf("character %d (%q): %w", i, cv.Char,
				&DimensionMismatchError{Expected: dims, Actual: len(cv.Vector)})
		}
	}
	return nil
}

// VectorMap returns the profile's characters keyed by grapheme in profile
// order. A repeated character keeps its first vector.
func (p *AlphabetProfile) VectorMap() *OrderedMap[string, []float64] {
	m := NewOrderedMap[string, []float64]()
	for _, cv := range p.Characters {
		if _, exists := m.Get(cv.Char); !exists {
			m.Set(cv.Char, cv.Vector)
		}
	}
	return m
}

// ReadProfile decodes a JSON profile from r and validates it.
func ReadProfile(r io.Reader) (*AlphabetProfile, error) {
	var p AlphabetProfile
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &p, nil
}

// WriteProfile encodes the profile as JSON to w.
func (p *AlphabetProfile) WriteProfile(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return nil
}

// isCompressed reports whether a profile path uses zstd compression.
func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

// LoadProfile reads a profile from disk. Paths ending in ".zst" are
// decompressed with zstd first.
func LoadProfile(path string) (*AlphabetProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	p, err := ReadProfile(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// SaveProfile writes the profile to disk, compressing it with zstd when
// the path ends in ".zst".
func (p *AlphabetProfile) SaveProfile(path string) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid profile: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	var w io.Writer = f
	var enc *zstd.Encoder
	if isCompressed(path) {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w = enc
	}

	if err := p.WriteProfile(w); err != nil {
		f.Close()
		return err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			f.Close()
			return fmt.Errorf("failed to close zstd writer: %w", err)
		}
	}
	return f.Close()
}
