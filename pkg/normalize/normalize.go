// Package normalize canonicalizes grocery item names so that naming variants
// of the same real-world product ("Organic Bananas 16oz", "bananas") share one
// identity key across the list, receipts, and history collections.
package normalize

import (
	"regexp"
	"strings"
)

var (
	nonToken   = regexp.MustCompile(`[^a-z0-9% ]+`)
	whitespace = regexp.MustCompile(`\s+`)
	measure    = regexp.MustCompile(`^\d+(\.\d+)?(oz|lb|lbs|g|kg|ml|l|ct)$`)
	numeric    = regexp.MustCompile(`^\d+(\.\d+)?%?$`)
)

var leadingDescriptors = map[string]struct{}{
	"organic": {},
	"fresh":   {},
	"whole":   {},
	"large":   {},
	"small":   {},
}

var trailingFiller = map[string]struct{}{
	"pack":   {},
	"packs":  {},
	"count":  {},
	"ct":     {},
	"pkg":    {},
	"pk":     {},
	"bag":    {},
	"bottle": {},
	"can":    {},
}

// Canonical reduces an item name to its canonical identity key. It lowercases,
// strips punctuation, drops leading descriptor tokens and trailing
// filler/measurement/numeric tokens, and joins the remaining tokens with
// single spaces. When every token strips away, it falls back to the
// whitespace-collapsed lowercased input so non-empty names never map to "".
func Canonical(name string) string {
	cleaned := nonToken.ReplaceAllString(strings.ToLower(name), " ")
	tokens := strings.Fields(cleaned)

	for len(tokens) > 0 {
		if _, ok := leadingDescriptors[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}

	for len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		_, filler := trailingFiller[last]
		if !filler && !measure.MatchString(last) && !numeric.MatchString(last) {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	if len(tokens) == 0 {
		return whitespace.ReplaceAllString(strings.TrimSpace(strings.ToLower(name)), " ")
	}
	return strings.Join(tokens, " ")
}

// DisplayName renders the canonical identity as a readable title-cased name,
// for presentation only. The canonical form remains the grouping key.
func DisplayName(name string) string {
	canonical := Canonical(name)
	if canonical == "" {
		return strings.TrimSpace(name)
	}
	tokens := strings.Split(canonical, " ")
	for i, tok := range tokens {
		tokens[i] = capitalize(tok)
	}
	return strings.Join(tokens, " ")
}

func capitalize(token string) string {
	if token == "" {
		return token
	}
	return strings.ToUpper(token[:1]) + token[1:]
}
