// Package generator produces device hardening configuration snippets.
// Generators are stateless text templating: no shared state, no device
// interaction.
package generator

import "strings"

// Output formats accepted by every generator.
const (
	FormatCLI     = "cli"
	FormatOneline = "oneline"
)

// ToOneline flattens a CLI block into a single "a ; b ; c" line, dropping
// blanks and comment lines.
func ToOneline(block string) string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ; ")
}

// Render applies the requested output format to a CLI block. Unknown
// formats fall back to CLI.
func Render(block, format string) string {
	if format == FormatOneline {
		return ToOneline(block)
	}
	return block
}
