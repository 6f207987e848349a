package lyrics

import (
	"fmt"
	"os"
	"strings"

	"musicclean/internal/words"
)

const maxWordsPerLRCLine = 10

// FormatLRCTimestamp renders seconds as the LRC "[mm:ss.xx]" tag.
func FormatLRCTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int64(seconds*100 + 0.5)
	minutes := centis / 6000
	rem := centis % 6000
	return fmt.Sprintf("[%02d:%02d.%02d]", minutes, rem/100, rem%100)
}

// GenerateLRC renders timed tokens as LRC lines. A line ends after a word
// carrying terminal or comma punctuation, or once it holds ten words.
// Untimed tokens are skipped.
func GenerateLRC(tokens []words.Token) string {
	var (
		out       []string
		current   []string
		lineStart float64
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, FormatLRCTimestamp(lineStart)+strings.Join(current, " "))
		current = current[:0]
	}

	for _, tok := range tokens {
		if !tok.Timed {
			continue
		}
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}
		if len(current) == 0 {
			lineStart = tok.Start
		}
		current = append(current, text)
		if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") ||
			strings.HasSuffix(text, "?") || strings.HasSuffix(text, ",") ||
			len(current) >= maxWordsPerLRCLine {
			flush()
		}
	}
	flush()
	return strings.Join(out, "\n")
}

// WriteLRC writes the LRC rendering of tokens to path.
func WriteLRC(path string, tokens []words.Token) error {
	content := GenerateLRC(tokens)
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("write lrc: %w", err)
	}
	return nil
}
