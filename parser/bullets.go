package parser

import (
	"regexp"
	"strings"
)

// NoActionsFallback is rendered when normalized action text yields nothing.
const NoActionsFallback = "No actions identified."

var (
	htmlTag    = regexp.MustCompile(`<[^>]+>`)
	boldMarker = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

const bulletPrefixSet = "-•0123456789. "

// NormalizeBullets turns AI-generated bullet text into an ordered list of
// plain lines: escaped newlines unescaped, wrapping quotes and HTML tags
// stripped, markdown bold markers removed, leading bullet or numbering
// prefixes dropped, whitespace trimmed, blank lines skipped. It never fails
// on malformed input and is idempotent: normalizing already-normalized text
// yields the same lines.
func NormalizeBullets(text string) []string {
	cleaned := strings.ReplaceAll(text, `\n`, "\n")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, `"'`)
	cleaned = htmlTag.ReplaceAllString(cleaned, "")

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = boldMarker.ReplaceAllString(line, "$1")
		line = strings.TrimLeft(line, bulletPrefixSet)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// BulletText renders bullet text as plain dashed lines suitable for e-mail
// bodies. Empty input renders the fallback line.
func BulletText(text string) string {
	lines := NormalizeBullets(text)
	if len(lines) == 0 {
		return "- " + NoActionsFallback
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(line)
	}
	return b.String()
}
