package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "build.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"build", "render", "inspect"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2026-01-01")
	defer SetVersion("", "", "")

	stdout, _, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "img2ascii 1.0.0")
	assert.Contains(t, stdout, "abc123")
}

func TestBuildRenderInspect(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `
[[profile]]
name = "tiny"
characters = " .:#"
output = "tiny.json.zst"

[[profile]]
name = "skipped"
characters = "ab"
`)

	stdout, stderr, err := runCLI(t, "build", cfgPath, "--output-dir", dir, "--only", "tiny", "-v")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "tiny\t4 chars")
	assert.Contains(t, stderr, "Built 1 of 1 profiles")
	profilePath := filepath.Join(dir, "tiny.json.zst")
	assert.FileExists(t, profilePath)
	assert.NoFileExists(t, filepath.Join(dir, "skipped.json"))

	imgPath := filepath.Join(dir, "in.png")
	img := imageutil.CreateSplitImage(64, 32,
		imageutil.RGB{R: 255, G: 255, B: 255},
		imageutil.RGB{})
	require.NoError(t, imageutil.SavePNG(img.RGBA, imgPath))

	stdout, stderr, err = runCLI(t, "render", imgPath, "--profile", profilePath, "--width", "8")
	require.NoError(t, err, stderr)
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 8)
	assert.Equal(t, "        ", lines[1])

	txtPath := filepath.Join(dir, "out.txt")
	_, stderr, err = runCLI(t, "render", imgPath, "-p", profilePath, "-W", "8", "-o", txtPath)
	require.NoError(t, err, stderr)
	data, err := os.ReadFile(txtPath)
	require.NoError(t, err)
	assert.Equal(t, stdout, string(data))

	pngPath := filepath.Join(dir, "out.png")
	_, stderr, err = runCLI(t, "render", imgPath, "-p", profilePath, "-W", "8", "-o", pngPath)
	require.NoError(t, err, stderr)
	preview, err := imageutil.LoadImage(pngPath)
	require.NoError(t, err)
	assert.Equal(t, 8*img2ascii.DefaultCellWidth, preview.Width())
	assert.Equal(t, 2*img2ascii.DefaultCellHeight, preview.Height())

	stdout, stderr, err = runCLI(t, "inspect", profilePath, "-n", "2")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "name:        tiny")
	assert.Contains(t, stdout, "characters:  4")
	assert.Contains(t, stdout, "alphabet:     .:#")
	assert.Contains(t, stdout, "dimensions:  6")
	assert.Contains(t, stdout, "closest pairs:")
}

func TestBuildReportsFailedProfiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `
[[profile]]
name = "ok"
characters = ".#"

[[profile]]
name = "broken"
characters = ".#"
[profile.font]
paths = ["/nonexistent/font.ttf"]
`)

	stdout, stderr, err := runCLI(t, "build", cfgPath, "-o", dir)
	require.Error(t, err)
	var fontErr *img2ascii.FontRegistrationError
	assert.ErrorAs(t, err, &fontErr)
	assert.Contains(t, stdout, "ok\t2 chars")
	assert.Contains(t, stderr, "Built 1 of 2 profiles")
	assert.FileExists(t, filepath.Join(dir, "ok.json"))
}

func TestBuildUnknownOnlyProfile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "[[profile]]\nname = \"a\"\ncharacters = \"x\"\n")

	_, _, err := runCLI(t, "build", cfgPath, "--only", "b")
	assert.ErrorContains(t, err, `no profile named "b"`)
}

func TestRenderRequiresProfile(t *testing.T) {
	_, _, err := runCLI(t, "render", "in.png")
	assert.ErrorContains(t, err, "profile")
}

func TestConfusablePairs(t *testing.T) {
	profile := &img2ascii.AlphabetProfile{
		Metadata: img2ascii.Metadata{
			SamplingConfig: img2ascii.SamplingConfig{
				Points:       []img2ascii.SamplingPoint{{X: 0.5, Y: 0.5}},
				CircleRadius: 1,
			},
		},
		Characters: []img2ascii.CharacterVector{
			{Char: " ", Vector: []float64{0}},
			{Char: ".", Vector: []float64{0.1}},
			{Char: "#", Vector: []float64{1}},
		},
	}
	ix, err := img2ascii.NewIndex(profile)
	require.NoError(t, err)

	pairs, err := confusablePairs(ix)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, " ", pairs[0].char)
	assert.Equal(t, ".", pairs[0].neighbor)
	assert.InDelta(t, 0.1, pairs[0].distance, 1e-12)
	assert.Equal(t, "#", pairs[1].char)
	assert.Equal(t, ".", pairs[1].neighbor)
	assert.InDelta(t, 0.9, pairs[1].distance, 1e-12)
}
