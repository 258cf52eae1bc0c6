package compose

import "strings"

// Wrap breaks text into lines no wider than maxWidth, packing words greedily.
//
// Words are never split: a word wider than maxWidth gets a line of its own.
// measure returns the rendered width of a candidate line. Whitespace-only
// text yields no lines.
func Wrap(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
