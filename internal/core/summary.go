package core

import "strings"

const summaryMax = 64

// Summarize reduces a command to the short form used in
// acknowledgments and tailored filler lines: trimmed, lower-cased,
// truncated with an ellipsis when it exceeds 64 characters. Empty
// input summarizes to "that".
func Summarize(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "that"
	}
	r := []rune(t)
	if len(r) > summaryMax {
		return string(r[:summaryMax-3]) + "..."
	}
	return t
}

// TailoredPool builds the filler pool for one request: three lines
// about the request itself, then the persona's stock pool. With no
// usable summary the stock pool is used verbatim.
func TailoredPool(summary string, base []string) []string {
	if summary == "" || summary == "that" {
		return base
	}
	pool := []string{
		"Still working on " + summary + ".",
		"Hang tight, " + summary + " is in progress.",
		"Almost done with " + summary + ".",
	}
	return append(pool, base...)
}
