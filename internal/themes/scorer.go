package themes

import (
	"sort"
	"strings"
	"unicode"
)

// ScoreVector maps every theme ID to the number of its trigger phrases found in a text.
type ScoreVector map[string]int

// Score is the keyword scorer's verdict for one text.
type Score struct {
	Theme     string // winning theme ID
	Display   string // winning theme display name
	BestScore int
	Scores    ScoreVector

	order []string
}

// ThemeScore is one row of a ranking.
type ThemeScore struct {
	Theme string
	Score int
}

// Matched reports whether any trigger phrase was found.
func (s Score) Matched() bool {
	return s.BestScore > 0
}

// Ranking lists every theme by descending score; equal scores keep vocabulary order.
func (s Score) Ranking() []ThemeScore {
	out := make([]ThemeScore, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, ThemeScore{Theme: id, Score: s.Scores[id]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Score counts, per theme, how many of its trigger phrases appear in text as
// whole words. A phrase counts once no matter how often it repeats. The
// highest count wins and ties go to the theme declared first.
func (v *Vocabulary) Score(text string) Score {
	scores := make(ScoreVector, len(v.themes))
	for _, t := range v.themes {
		scores[t.ID] = 0
	}

	if v.matcher != nil {
		padded := " " + strings.Join(tokenize(text), " ") + " "
		seen := make(map[int]bool)
		for _, hit := range v.matcher.MatchThreadSafe([]byte(padded)) {
			if hit < 0 || hit >= len(v.padOwners) || seen[hit] {
				continue
			}
			seen[hit] = true
			for _, themeIdx := range v.padOwners[hit] {
				scores[v.themes[themeIdx].ID]++
			}
		}
	}

	best := 0
	for i := 1; i < len(v.themes); i++ {
		if scores[v.themes[i].ID] > scores[v.themes[best].ID] {
			best = i
		}
	}

	return Score{
		Theme:     v.themes[best].ID,
		Display:   v.themes[best].Display,
		BestScore: scores[v.themes[best].ID],
		Scores:    scores,
		order:     v.IDs(),
	}
}

// tokenize lower-cases s and splits it on anything that is not a letter,
// digit or underscore, the same characters a regexp word boundary respects.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}
