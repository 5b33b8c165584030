package scaffold

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\- ]*$`)

// Names are the spellings of a scaffold name used by the templates.
type Names struct {
	// Singular kebab case: "blog-post".
	Kebab string
	// Singular Pascal case: "BlogPost".
	Pascal string
	// Plural kebab case: "blog-posts".
	Plural string
	// Plural Pascal case: "BlogPosts".
	PluralPascal string
	// Go package name for the plural: "blogposts".
	Package string
}

// NewNames normalises name. Words may be separated by dashes, underscores,
// spaces or case changes.
func NewNames(name string) (Names, error) {
	name = strings.TrimSpace(name)
	if !validName.MatchString(name) {
		return Names{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	words := splitWords(name)
	if len(words) == 0 {
		return Names{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	lower := cases.Lower(language.English)
	title := cases.Title(language.English)
	for i, w := range words {
		words[i] = lower.String(w)
	}
	plural := append([]string(nil), words...)
	plural[len(plural)-1] = pluralize(plural[len(plural)-1])

	pascal := func(ws []string) string {
		var b strings.Builder
		for _, w := range ws {
			b.WriteString(title.String(w))
		}
		return b.String()
	}

	return Names{
		Kebab:        strings.Join(words, "-"),
		Pascal:       pascal(words),
		Plural:       strings.Join(plural, "-"),
		PluralPascal: pascal(plural),
		Package:      strings.Join(plural, ""),
	}, nil
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '-' || r == '_' || r == ' ':
			flush()
		case unicode.IsUpper(r) && len(cur) > 0:
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

var irregular = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
}

var uncountable = map[string]bool{
	"news": true, "data": true, "info": true, "media": true, "series": true, "species": true,
}

// pluralize applies the common English suffix rules.
func pluralize(w string) string {
	if p, ok := irregular[w]; ok {
		return p
	}
	if uncountable[w] {
		return w
	}
	switch {
	case strings.HasSuffix(w, "y") && len(w) > 1 && !strings.ContainsRune("aeiou", rune(w[len(w)-2])):
		return w[:len(w)-1] + "ies"
	case strings.HasSuffix(w, "s"), strings.HasSuffix(w, "x"), strings.HasSuffix(w, "z"),
		strings.HasSuffix(w, "ch"), strings.HasSuffix(w, "sh"):
		return w + "es"
	}
	return w + "s"
}
