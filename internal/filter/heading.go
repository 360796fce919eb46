package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AllCollectionsLabel is the heading when nothing narrows the catalogue.
const AllCollectionsLabel = "Toutes les Collections"

// Labeler resolves a category slug to its display label.
type Labeler interface {
	CategoryLabel(slug string) (string, bool)
}

// LabelerFunc adapts a function to Labeler.
type LabelerFunc func(slug string) (string, bool)

// CategoryLabel calls the wrapped function.
func (f LabelerFunc) CategoryLabel(slug string) (string, bool) { return f(slug) }

// Heading picks the page title: product slug first, then category, then the generic label.
func Heading(s State, labels Labeler) string {
	if s.ProductSlug != "" {
		return Humanize(s.ProductSlug)
	}
	if !IsAllCategory(s.Category) {
		if labels != nil {
			if label, ok := labels.CategoryLabel(s.Category); ok && label != "" {
				return label
			}
		}
		return Humanize(s.Category)
	}
	return AllCollectionsLabel
}

// Humanize turns "robe-soire" into "Robe Soire".
func Humanize(slug string) string {
	parts := strings.Split(slug, "-")
	words := make([]string, 0, len(parts))
	caser := cases.Title(language.French, cases.NoLower)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		words = append(words, caser.String(p))
	}
	return strings.Join(words, " ")
}
