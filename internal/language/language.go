// Package language turns BCP 47 language codes from the dubbing API into
// human-readable names for the ledger and status output.
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DisplayName returns the English display name for a language code, e.g.
// "de" -> "German" and "pt-BR" -> "Brazilian Portuguese". Codes that do not
// parse are returned unchanged so the raw value is still recorded.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return code
	}
	return name
}
