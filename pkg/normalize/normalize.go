// Package normalize implements the text normalization step of the
// similarity pipeline: Unicode NFKD decomposition, ligature expansion,
// case folding, and whitespace collapse. Normalize is purely functional
// and idempotent.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ligatures maps multi-character ligatures to their ASCII expansions.
// Applied after NFKD: NFKD already expands the ff/fi/fl/ffi/ffl
// presentation forms, but has no decomposition for œ/Œ/æ/Æ.
var ligatures = map[rune]string{
	'ﬀ': "ff",
	'ﬁ': "fi",
	'ﬂ': "fl",
	'ﬃ': "ffi",
	'ﬄ': "ffl",
	'œ': "oe", // œ
	'Œ': "OE", // Œ
	'æ': "ae", // æ
	'Æ': "AE", // Æ
}

var caseFolder = cases.Fold()

// Normalize applies, in order: NFKD decomposition, ligature expansion,
// Unicode case folding, whitespace-run collapse to a single U+0020, and
// leading/trailing trim. It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	decomposed := norm.NFKD.String(text)
	expanded := expandLigatures(decomposed)
	folded := caseFolder.String(expanded)
	collapsed := collapseWhitespace(folded)
	return strings.TrimSpace(collapsed)
}

func expandLigatures(s string) string {
	hasLigature := false
	for _, r := range s {
		if _, ok := ligatures[r]; ok {
			hasLigature = true
			break
		}
	}
	if !hasLigature {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if expansion, ok := ligatures[r]; ok {
			b.WriteString(expansion)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// StripTones removes Vietnamese (and other Latin) combining diacritics
// after NFKD decomposition, and maps đ/Đ to d/D, which NFKD does not
// decompose since đ is not canonically equivalent to d+stroke. It is used
// only for the optional cross-language comparison path (spec §4.1); it is
// never applied by Normalize.
func StripTones(text string) string {
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch r {
		case 'đ':
			b.WriteRune('d')
			continue
		case 'Đ':
			b.WriteRune('D')
			continue
		}
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark, dropped
		}
		b.WriteRune(r)
	}

	return norm.NFC.String(b.String())
}
