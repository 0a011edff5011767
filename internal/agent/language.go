package agent

import "niva/internal/catalog"

// DetectLanguage returns Telugu if any code point of the text falls in the
// Telugu Unicode block (U+0C00..U+0C7F), English otherwise.
func DetectLanguage(text string) catalog.Language {
	for _, r := range text {
		if r >= 0x0C00 && r <= 0x0C7F {
			return catalog.LanguageTelugu
		}
	}
	return catalog.LanguageEnglish
}
