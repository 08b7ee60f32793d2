package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used whenever a client supplies a code the
// transcription service would reject.
const DefaultLanguage = "en"

// NormalizeLanguage reduces a BCP 47 style code ("en-US", "pt_BR") to the
// bare ISO 639-1 code the speech services expect. Unparseable codes fall
// back to English rather than failing the segment.
func NormalizeLanguage(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return DefaultLanguage
	}
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLanguage
	}
	return base.String()
}
