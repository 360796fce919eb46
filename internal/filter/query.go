package filter

import (
	"net/url"
	"strings"
)

// Query string keys.
const (
	QueryCategory     = "category"
	QueryCollaborator = "collaborator"
	QuerySort         = "sort"
	QueryProduct      = "product"
)

// Validator reports whether a category slug exists in the current taxonomy.
type Validator func(category string) bool

// FromQuery decodes a selection. Missing or malformed keys fall back to their
// own default; the other fields are unaffected. A nil validator accepts any category.
func FromQuery(q url.Values, valid Validator) State {
	s := Default()
	if v := strings.TrimSpace(q.Get(QueryCategory)); v != "" {
		if IsAllCategory(v) || valid == nil || valid(v) {
			s = setField(s, FieldCategory, v)
		}
	}
	if v := q.Get(QueryCollaborator); v != "" {
		s = setField(s, FieldCollaborator, v)
	}
	if v := q.Get(QuerySort); v != "" {
		s = setField(s, FieldSort, v)
	}
	if v := q.Get(QueryProduct); v != "" {
		s = setField(s, FieldProduct, v)
	}
	return s
}

// ToQuery encodes only the fields that differ from Default.
func ToQuery(s State) url.Values {
	def := Default()
	q := url.Values{}
	if !IsAllCategory(s.Category) {
		q.Set(QueryCategory, s.Category)
	}
	if s.Collaborator != def.Collaborator && s.Collaborator != "" {
		q.Set(QueryCollaborator, s.Collaborator)
	}
	if s.Sort != def.Sort && s.Sort != "" {
		q.Set(QuerySort, string(s.Sort))
	}
	if s.ProductSlug != "" {
		q.Set(QueryProduct, s.ProductSlug)
	}
	return q
}

// Encode returns the canonical query string for s.
func Encode(s State) string {
	return ToQuery(s).Encode()
}
