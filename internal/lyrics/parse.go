package lyrics

import (
	"regexp"
	"strings"

	"musicclean/internal/words"
)

var (
	sectionHeaderPattern = regexp.MustCompile(`\[[^\]]*\]`)
	embedSuffixPattern   = regexp.MustCompile(`\d*Embed$`)
	// titleLinePattern matches a "<Song> Lyrics" header, optionally followed
	// directly by the first section header.
	titleLinePattern = regexp.MustCompile(`^.*\S\s*Lyrics\s*(\[.*)?$`)
)

const suggestionMarker = "You might also like"

// Clean removes lyrics-site artifacts: a leading "... Lyrics" title line,
// blank lines at either end, a trailing "NEmbed" marker, and "You might also
// like" blocks together with the three suggestion lines that follow them.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		if m := titleLinePattern.FindStringSubmatch(strings.TrimSpace(lines[0])); m != nil {
			if m[1] != "" {
				lines[0] = m[1]
			} else {
				lines = lines[1:]
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		last := len(lines) - 1
		lines[last] = embedSuffixPattern.ReplaceAllString(lines[last], "")
	}

	cleaned := make([]string, 0, len(lines))
	skip := 0
	for _, line := range lines {
		if skip > 0 {
			skip--
			continue
		}
		if strings.TrimSpace(line) == suggestionMarker {
			skip = 3
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

// Parse tokenizes reference text into lines of untimed tokens. Section
// headers are removed before tokenization, and lines that carry no words
// after normalization are omitted.
func Parse(text string) []words.Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []words.Line
	for i, raw := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(sectionHeaderPattern.ReplaceAllString(raw, " "))
		if stripped == "" {
			continue
		}
		var tokens []words.Token
		for _, field := range words.SplitFields(stripped) {
			tok := words.NewReference(field)
			if tok.Empty() {
				continue
			}
			tokens = append(tokens, tok)
		}
		if len(tokens) == 0 {
			continue
		}
		lines = append(lines, words.Line{
			Number: i + 1,
			Text:   stripped,
			Tokens: tokens,
		})
	}
	return lines
}
