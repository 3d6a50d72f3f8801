package report

import (
	"regexp"
	"strings"
	"unicode"
)

const fenceMarker = "```"

// an opening fence may carry a language tag, e.g. ```markdown
var openingFenceRE = regexp.MustCompile("^```[A-Za-z0-9_.+#-]*$")

// Normalize strips code-fence lines wrapping the report and canonicalizes
// line endings. The result uses "\n" throughout and ends in exactly one "\n";
// empty or blank input yields "\n".
//
// Fence lines are peeled from both edges until neither edge is a fence, so
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	lines = trimBlankLines(lines)

	for {
		peeled := false
		if len(lines) > 0 && isOpeningFence(lines[0]) {
			lines = lines[1:]
			peeled = true
		}
		if len(lines) > 0 && isClosingFence(lines[len(lines)-1]) {
			lines = lines[:len(lines)-1]
			peeled = true
		}
		if !peeled {
			break
		}
		lines = trimBlankLines(lines)
	}

	if len(lines) == 0 {
		return "\n"
	}

	last := len(lines) - 1
	lines[last] = strings.TrimRightFunc(lines[last], unicode.IsSpace)
	return strings.Join(lines, "\n") + "\n"
}

func isOpeningFence(line string) bool {
	return openingFenceRE.MatchString(strings.TrimRightFunc(line, unicode.IsSpace))
}

func isClosingFence(line string) bool {
	return strings.TrimRightFunc(line, unicode.IsSpace) == fenceMarker
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end]
}
