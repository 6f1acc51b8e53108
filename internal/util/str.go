package util

import "strings"

// CollapseSpace trims the input and squeezes every whitespace run
// (non-breaking spaces included) into a single space. The input is decoded
// text, entities are left alone.
func CollapseSpace(input string) string {
	var result string
	result = input

	result = strings.ReplaceAll(result, "\u00a0", " ")

	result = strings.Join(strings.Fields(result), " ")

	return result
}

// TruncateRunes returns the first n characters of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}

	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
