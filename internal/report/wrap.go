package report

import (
	"strings"
	"unicode"
)

// wrapText wraps a logical line into physical lines of at most width
// characters, preserving word boundaries. Whitespace runs between words
// are kept as-is within a line (tabs become spaces) so aligned text keeps
// its alignment; runs falling on a line break are dropped. Words longer
// than the width are broken. Empty or all-whitespace input yields no lines.
func wrapText(text string, width int) []string {
	var lines []string
	var cur []rune

	flush := func() {
		line := strings.TrimRight(string(cur), " ")
		if line != "" {
			lines = append(lines, line)
		}
		cur = cur[:0]
	}

	for _, chunk := range splitChunks(text) {
		runes := []rune(chunk)

		if runes[0] == ' ' {
			if len(cur) == 0 {
				continue
			}
			if len(cur)+len(runes) > width {
				flush()
				continue
			}
			cur = append(cur, runes...)
			continue
		}

		if len(cur)+len(runes) <= width {
			cur = append(cur, runes...)
			continue
		}

		if len(runes) <= width {
			flush()
			cur = append(cur, runes...)
			continue
		}

		// Long word: fill the remaining space on the current line, then
		// full-width slices.
		for len(cur)+len(runes) > width {
			space := width - len(cur)
			cur = append(cur, runes[:space]...)
			runes = runes[space:]
			flush()
		}
		cur = append(cur, runes...)
	}

	flush()
	return lines
}

// splitChunks splits text into alternating word and whitespace chunks,
// with every whitespace character normalized to a space.
func splitChunks(text string) []string {
	runes := []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text))

	var chunks []string
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || (runes[i] == ' ') != (runes[start] == ' ') {
			chunks = append(chunks, string(runes[start:i]))
			start = i
		}
	}
	return chunks
}
