package store

import "strings"

// tail returns a copy of the last limit lines. limit <= 0 keeps everything.
func tail(lines []string, limit int) []string {
	start := 0
	if limit > 0 && len(lines) > limit {
		start = len(lines) - limit
	}
	out := make([]string, len(lines)-start)
	copy(out, lines[start:])
	return out
}

// splitLines breaks pushed log chunks on newlines so every stored row is a
// single line. A trailing newline does not add an empty line.
func splitLines(chunks []string) []string {
	var out []string
	for _, c := range chunks {
		c = strings.TrimRight(c, "\r\n")
		if c == "" {
			out = append(out, "")
			continue
		}
		for _, line := range strings.Split(c, "\n") {
			out = append(out, strings.TrimRight(line, "\r"))
		}
	}
	return out
}
