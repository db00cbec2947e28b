// Package themes holds the canonical theme vocabulary and the deterministic
// keyword scorer built on top of it.
package themes

import (
	"fmt"
	"log"
	"os"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Theme is one canonical category with its trigger phrases, in declaration order.
type Theme struct {
	ID       string   `yaml:"id"`
	Display  string   `yaml:"display"`
	Triggers []string `yaml:"triggers"`
}

type vocabularyFile struct {
	Themes []Theme `yaml:"themes"`
}

// Vocabulary is immutable after construction and safe for concurrent use.
type Vocabulary struct {
	themes    []Theme
	position  map[string]int    // theme ID -> index in themes
	phrases   []string          // every trigger phrase in declaration order
	owner     map[string]string // phrase -> theme ID, later themes win
	padded    []string          // " phrase " per automaton index
	padOwners [][]int           // automaton index -> theme index per registration
	matcher   *ahocorasick.Matcher
}

// titleCase builds a fresh caser per call; cases.Caser keeps state between calls.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// DefaultVocabulary returns the built-in eight theme vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(defaultThemes())
	if err != nil {
		panic(fmt.Sprintf("themes: invalid built-in vocabulary: %v", err))
	}
	return v
}

func defaultThemes() []Theme {
	return []Theme{
		{ID: "checkout", Triggers: []string{"checkout", "cart", "payment", "payment gateway", "card", "billing", "billing page"}},
		{ID: "support", Triggers: []string{"support", "customer service", "agent", "response", "ticket", "helpdesk"}},
		{ID: "pricing", Triggers: []string{"price", "cost", "expensive", "cheap", "pricing", "subscription", "fee"}},
		{ID: "product", Triggers: []string{"product", "feature", "quality", "item", "spec", "functionality", "bug"}},
		{ID: "performance", Triggers: []string{"slow", "lag", "load time", "performance", "timeout"}},
		{ID: "ux", Display: "UX", Triggers: []string{"ui", "user interface", "navigation", "confusing", "difficult to use", "experience", "flow", "process"}},
		{ID: "delivery", Triggers: []string{"delivery", "shipment", "tracking", "courier", "late", "arrival"}},
		{ID: "returns", Triggers: []string{"return", "refund", "exchange", "return policy"}},
	}
}

// NewVocabulary validates the themes and builds the forward and reverse indexes.
func NewVocabulary(list []Theme) (*Vocabulary, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("vocabulary has no themes")
	}

	v := &Vocabulary{
		themes:   make([]Theme, 0, len(list)),
		position: make(map[string]int, len(list)),
		owner:    make(map[string]string),
	}
	padIndex := make(map[string]int)

	for _, t := range list {
		id := normalizeToken(t.ID)
		if id == "" {
			return nil, fmt.Errorf("theme with empty id")
		}
		if _, dup := v.position[id]; dup {
			return nil, fmt.Errorf("duplicate theme id %q", id)
		}
		display := strings.TrimSpace(t.Display)
		if display == "" {
			display = titleCase(id)
		}

		themeIdx := len(v.themes)
		var triggers []string
		for _, raw := range t.Triggers {
			phrase := normalizeToken(raw)
			if phrase == "" {
				continue
			}
			triggers = append(triggers, phrase)
			v.phrases = append(v.phrases, phrase)
			if prev, taken := v.owner[phrase]; taken && prev != id {
				log.Printf("themes duplicate trigger phrase=%q first=%s now=%s (later theme wins name lookups)", phrase, prev, id)
			}
			v.owner[phrase] = id

			key := " " + strings.Join(tokenize(phrase), " ") + " "
			if strings.TrimSpace(key) == "" {
				continue
			}
			idx, seen := padIndex[key]
			if !seen {
				idx = len(v.padded)
				padIndex[key] = idx
				v.padded = append(v.padded, key)
				v.padOwners = append(v.padOwners, nil)
			}
			v.padOwners[idx] = append(v.padOwners[idx], themeIdx)
		}

		v.position[id] = themeIdx
		v.themes = append(v.themes, Theme{ID: id, Display: display, Triggers: triggers})
	}

	if len(v.padded) > 0 {
		v.matcher = ahocorasick.NewStringMatcher(v.padded)
	}
	return v, nil
}

// LoadVocabulary reads a YAML vocabulary file of the form
//
//	themes:
//	  - id: checkout
//	    display: Checkout
//	    triggers: [checkout, cart]
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary yaml: %w", err)
	}
	v, err := NewVocabulary(f.Themes)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	return v, nil
}

// Themes returns a copy of the themes in declaration order.
func (v *Vocabulary) Themes() []Theme {
	out := make([]Theme, len(v.themes))
	for i, t := range v.themes {
		out[i] = Theme{ID: t.ID, Display: t.Display, Triggers: append([]string(nil), t.Triggers...)}
	}
	return out
}

// IDs returns the canonical theme identifiers in declaration order.
func (v *Vocabulary) IDs() []string {
	out := make([]string, len(v.themes))
	for i, t := range v.themes {
		out[i] = t.ID
	}
	return out
}

func (v *Vocabulary) DisplayNames() []string {
	out := make([]string, len(v.themes))
	for i, t := range v.themes {
		out[i] = t.Display
	}
	return out
}

// Display returns the display name for a theme ID, or "" if unknown.
func (v *Vocabulary) Display(id string) string {
	idx, ok := v.position[normalizeToken(id)]
	if !ok {
		return ""
	}
	return v.themes[idx].Display
}

// ThemeForPhrase returns the theme owning a trigger phrase.
func (v *Vocabulary) ThemeForPhrase(phrase string) (string, bool) {
	id, ok := v.owner[normalizeToken(phrase)]
	return id, ok
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
