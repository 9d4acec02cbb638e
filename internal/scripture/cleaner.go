package scripture

import (
	"regexp"
	"strings"
)

// Patterns treat \p{Zs} as whitespace too: extracted text carries &nbsp; as
// U+00A0, which \s does not match.
var (
	verseNumberPrefix = regexp.MustCompile(`^(\d+)[.\s\p{Zs}]`)
	lexiconReference  = regexp.MustCompile(`< \d+ >`)
	morphologicalTag  = regexp.MustCompile(`\(\d+\)`)
	looseNumber       = regexp.MustCompile(`[\s\p{Zs}]+\d+[\s\p{Zs}]+`)
	whitespaceRun     = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// entityReplacements are applied one after another, in this order.
var entityReplacements = [][2]string{
	{"&quot;", `"`},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&nbsp;", " "},
	{"&apos;", "'"},
}

// Clean normalises raw verse text for the given version. Non-base versions
// also lose their lexicon references, morphological tags and stray numbers.
//
// The pass is repeated until the text stops changing. No step lengthens the
// text, so the loop ends, and the result is a fixed point: Clean(Clean(x)) ==
// Clean(x).
func Clean(raw, version string) string {
	current := raw
	for {
		next := cleanPass(current, version)
		if next == current {
			return next
		}
		current = next
	}
}

func cleanPass(text, version string) string {
	for _, r := range entityReplacements {
		text = strings.ReplaceAll(text, r[0], r[1])
	}

	text = strings.ReplaceAll(text, " _", "")
	text = strings.ReplaceAll(text, "_ ", "")
	text = strings.ReplaceAll(text, "_", "")

	text = verseNumberPrefix.ReplaceAllString(text, "")

	if normalizeVersion(version) != DefaultVersion {
		text = lexiconReference.ReplaceAllString(text, "")
		text = morphologicalTag.ReplaceAllString(text, "")
		text = looseNumber.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
