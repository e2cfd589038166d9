package shell

import "strings"

// Delimiters separate tokens: space, tab, carriage return, newline and bell.
const Delimiters = " \t\r\n\a"

// Split breaks line into maximal runs of non-delimiter characters. There is
// no quoting or escaping. An empty or all-delimiter line yields no tokens.
func Split(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(Delimiters, r)
	})
}
