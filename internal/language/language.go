package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto asks the recognizer to detect the language itself.
const Auto = "auto"

// supported lists the recognizer languages accepted by name as well as by code.
var supported = []string{
	"en", "es", "fr", "de", "it", "pt", "nl", "sv", "da", "no", "fi", "pl",
	"cs", "ru", "uk", "tr", "el", "hu", "ro", "ar", "he", "hi", "ja", "ko",
	"zh", "vi", "id", "ms", "th", "ca",
}

var byName = func() map[string]string {
	names := display.English.Languages()
	out := make(map[string]string, len(supported))
	for _, code := range supported {
		name := strings.ToLower(names.Name(language.Make(code)))
		if name != "" {
			out[name] = code
		}
	}
	return out
}()

// ToISO2 converts a language code or English language name to its ISO 639-1
// code. It returns "" for blank input, "auto", and anything unrecognized.
func ToISO2(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == Auto {
		return ""
	}
	if code, ok := byName[value]; ok {
		return code
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

// Valid reports whether value is blank, "auto", or a recognized language.
func Valid(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "" || value == Auto || ToISO2(value) != ""
}

// DisplayName returns the English name for value, "Automatic" for blank or
// "auto", or the upper-cased input when unrecognized.
func DisplayName(value string) string {
	code := ToISO2(value)
	if code == "" {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || strings.EqualFold(trimmed, Auto) {
			return "Automatic"
		}
		return strings.ToUpper(trimmed)
	}
	return display.English.Languages().Name(language.Make(code))
}
