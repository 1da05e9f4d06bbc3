package tools

import "unicode/utf8"

func truncate(s string, max int) string {
	if out, cut := truncateRunes(s, max); cut {
		return out + "\n(truncated)"
	}
	return s
}

// truncateRunes returns at most max runes of s, and whether anything was cut.
func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
