package img2ascii

import (
	"fmt"
	"sort"

	"github.com/rivo/uniseg"
)

// charsets are the named character sets a build may draw from.
var charsets = map[string]func() []string{
	"ascii": func() []string {
		chars := make([]string, 0, 95)
		for r := rune(32); r <= rune(126); r++ {
			chars = append(chars, string(r))
		}
		return chars
	},
	"blocks": func() []string {
		return splitGraphemes(" ▀▁▂▃▄▅▆▇█▌▍▎▏▐▔▕▖▗▘▙▚▛▜▝▞▟")
	},
	"shades": func() []string {
		return splitGraphemes(" ░▒▓█")
	},
	"box": func() []string {
		return splitGraphemes("─━│┃┄┅┆┇┈┉┊┋┌┐└┘├┤┬┴┼═║╔╗╚╝╠╣╦╩╬╭╮╯╰╱╲╳")
	},
}

// Charset returns the characters of a named set.
func Charset(name string) ([]string, error) {
	fn, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("unknown charset %q (available: %v)", name, CharsetNames())
	}
	return fn(), nil
}

// CharsetNames lists the available named sets in sorted order.
func CharsetNames() []string {
	names := make([]string, 0, len(charsets))
	for name := range charsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveCharacters unions the named sets and the graphemes of literal, in
// that order, dropping repeats while keeping first occurrences.
func ResolveCharacters(names []string, literal string) ([]string, error) {
	var all []string
	for _, name := range names {
		chars, err := Charset(name)
		if err != nil {
			return nil, err
		}
		all = append(all, chars...)
	}
	all = append(all, splitGraphemes(literal)...)

	seen := make(map[string]bool, len(all))
	result := all[:0]
	for _, ch := range all {
		if seen[ch] {
			continue
		}
		seen[ch] = true
		result = append(result, ch)
	}
	if len(result) == 0 {
		return nil, ErrEmptyAlphabet
	}
	return result, nil
}

// splitGraphemes splits s into user-perceived characters.
func splitGraphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
