package bot

import "strings"

// Characters MarkdownV2 requires a backslash before, per
// https://core.telegram.org/bots/api#markdownv2-style.
const markdownV2Special = "_*[]()~`>#+-=|{}.!"

var markdownV2Lookup = func() [256]bool {
	var m [256]bool
	for i := 0; i < len(markdownV2Special); i++ {
		m[markdownV2Special[i]] = true
	}
	return m
}()

// escapeMarkdownV2 backslash-escapes every special byte so arbitrary
// headline and body text renders literally.
func escapeMarkdownV2(input string) string {
	if !strings.ContainsAny(input, markdownV2Special) {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) * 2)

	for i := 0; i < len(input); i++ {
		if markdownV2Lookup[input[i]] {
			b.WriteByte('\\')
		}
		b.WriteByte(input[i])
	}

	return b.String()
}
