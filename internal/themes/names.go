package themes

import "strings"

// NormalizeThemeName maps a free-text theme label onto the vocabulary.
//
// A blank label yields "". Otherwise the first theme ID contained in the
// lower-cased label wins, then the first trigger phrase contained in it, in
// declaration order. Labels matching nothing are title-cased and kept.
func (v *Vocabulary) NormalizeThemeName(raw string) string {
	s := normalizeToken(raw)
	if s == "" {
		return ""
	}
	for _, t := range v.themes {
		if strings.Contains(s, t.ID) {
			return t.Display
		}
	}
	for _, phrase := range v.phrases {
		if strings.Contains(s, phrase) {
			return v.Display(v.owner[phrase])
		}
	}
	return titleCase(strings.TrimSpace(raw))
}

// SameTheme compares two theme labels case-insensitively.
func SameTheme(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
