package summarize

import "github.com/abadojack/whatlanggo"

const fallbackLanguageLabel = "the same language as the content"

// languageName detects the dominant language of text and returns a label
// usable inside the prompt. Detection is best-effort and never fails; an
// unrecognized language falls back to a generic label.
func languageName(text string) string {
	info := whatlanggo.Detect(text)

	name, ok := whatlanggo.Langs[info.Lang]
	if !ok || name == "" {
		return fallbackLanguageLabel
	}

	return name
}
