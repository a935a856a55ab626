package cli

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wbrown/img2ascii"
)

type inspectOpts struct {
	confusable int
}

func newInspectCmd() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [profile]",
		Short: "Summarize an alphabet profile",
		Long: `Inspect prints a profile's metadata and lists the character pairs whose
vectors are closest, which are the pairs a render is most likely to confuse.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.confusable, "confusable", "n", 10, "number of closest pairs to list")

	return cmd
}

// confusablePair is a character and its nearest other character.
type confusablePair struct {
	char     string
	neighbor string
	distance float64
}

func runInspect(cmd *cobra.Command, path string, opts inspectOpts) error {
	ix, err := img2ascii.LoadIndex(path)
	if err != nil {
		return err
	}
	pairs, err := confusablePairs(ix)
	if err != nil {
		return err
	}
	writeInspect(cmd.OutOrStdout(), ix, pairs, opts.confusable)
	return nil
}

// confusablePairs finds the nearest other character of every indexed
// character, closest pairs first. Each unordered pair is listed once.
func confusablePairs(ix *img2ascii.Index) ([]confusablePair, error) {
	var pairs []confusablePair
	seen := make(map[[2]string]bool)
	for _, ch := range ix.Characters() {
		vector, _ := ix.Vector(ch)
		neighbors, err := ix.Nearest(vector, 2)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if n.Data == ch {
				continue
			}
			key := [2]string{min(ch, n.Data), max(ch, n.Data)}
			if !seen[key] {
				seen[key] = true
				pairs = append(pairs, confusablePair{char: key[0], neighbor: key[1], distance: n.Distance})
			}
			break
		}
	}
	slices.SortStableFunc(pairs, func(a, b confusablePair) int {
		return cmp.Compare(a.distance, b.distance)
	})
	return pairs, nil
}

func writeInspect(w io.Writer, ix *img2ascii.Index, pairs []confusablePair, limit int) {
	md := ix.Profile().Metadata
	fmt.Fprintf(w, "name:        %s\n", md.Name)
	fmt.Fprintf(w, "font:        %s %.1fpt\n", md.Font, md.FontSize)
	fmt.Fprintf(w, "cell:        %dx%d\n", md.Width, md.Height)
	fmt.Fprintf(w, "dimensions:  %d\n", ix.Dimensions())
	fmt.Fprintf(w, "radius:      %.2f\n", md.SamplingConfig.CircleRadius)
	fmt.Fprintf(w, "characters:  %d\n", ix.Len())
	fmt.Fprintf(w, "alphabet:    %s\n", strings.Join(ix.Characters(), ""))
	fmt.Fprintf(w, "separation:  %.4f\n", img2ascii.MinPairwiseDistance(ix.Profile().Characters))

	if limit <= 0 || len(pairs) == 0 {
		return
	}
	fmt.Fprintln(w, "closest pairs:")
	for _, p := range pairs[:min(limit, len(pairs))] {
		fmt.Fprintf(w, "  %q %q  %.4f\n", p.char, p.neighbor, p.distance)
	}
}
