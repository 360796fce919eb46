package filter

import (
	"errors"
	"fmt"
	"strings"
)

// SortKey orders the product grid.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// SortOption pairs a sort key with its select label.
type SortOption struct {
	Key   SortKey
	Label string
}

// SortOptions lists the sort keys in display order.
var SortOptions = []SortOption{
	{Key: SortFeatured, Label: "Top Ventes"},
	{Key: SortNewest, Label: "Nouveautés"},
	{Key: SortPriceAsc, Label: "Prix: Croissant"},
	{Key: SortPriceDesc, Label: "Prix: Décroissant"},
}

// ParseSortKey reports whether raw names a known sort key.
func ParseSortKey(raw string) (SortKey, bool) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case SortFeatured, SortNewest, SortPriceAsc, SortPriceDesc:
		return key, true
	default:
		return SortFeatured, false
	}
}

// Sentinels meaning "no filter applied".
const (
	CategoryAll     = "Tous"
	CollaboratorAll = "all"

	categoryAllAlias = "all"
)

// IsAllCategory reports whether v is one of the unrestricted category sentinels.
func IsAllCategory(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == CategoryAll || strings.EqualFold(v, categoryAllAlias)
}

// Field names a FilterState field.
type Field string

const (
	FieldCategory     Field = "category"
	FieldCollaborator Field = "collaborator"
	FieldSort         Field = "sort"
	FieldProduct      Field = "product"
)

// ErrUnknownField is returned by ParseField for names outside the filter state.
var ErrUnknownField = errors.New("filter: unknown field")

// ParseField maps a form or query key onto a Field.
func ParseField(raw string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "category":
		return FieldCategory, nil
	case "collaborator":
		return FieldCollaborator, nil
	case "sort":
		return FieldSort, nil
	case "product", "productslug":
		return FieldProduct, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
}

// State is the current catalogue selection.
type State struct {
	Category     string
	Collaborator string
	Sort         SortKey
	ProductSlug  string
}

// Default is the cleared selection.
func Default() State {
	return State{
		Category:     CategoryAll,
		Collaborator: CollaboratorAll,
		Sort:         SortFeatured,
		ProductSlug:  "",
	}
}

// IsDefault reports whether every field holds its default.
func (s State) IsDefault() bool { return s == Default() }

// Filtered reports whether a category restriction is active.
func (s State) Filtered() bool { return !IsAllCategory(s.Category) }

// ActionKind distinguishes reducer actions.
type ActionKind int

const (
	ActionSetField ActionKind = iota + 1
	ActionClear
)

// Action is a transition request for Reduce.
type Action struct {
	Kind  ActionKind
	Field Field
	Value string
}

// SetField overwrites exactly one field.
func SetField(field Field, value string) Action {
	return Action{Kind: ActionSetField, Field: field, Value: value}
}

// Clear resets every field.
func Clear() Action { return Action{Kind: ActionClear} }

// Reduce applies a to s. Unknown actions and fields leave s unchanged.
func Reduce(s State, a Action) State {
	switch a.Kind {
	case ActionClear:
		return Default()
	case ActionSetField:
		return setField(s, a.Field, a.Value)
	default:
		return s
	}
}

func setField(s State, field Field, value string) State {
	value = strings.TrimSpace(value)
	switch field {
	case FieldCategory:
		if IsAllCategory(value) {
			value = CategoryAll
		}
		s.Category = value
	case FieldCollaborator:
		if value == "" {
			value = CollaboratorAll
		}
		s.Collaborator = value
	case FieldSort:
		key, _ := ParseSortKey(value)
		s.Sort = key
	case FieldProduct:
		s.ProductSlug = value
	}
	return s
}

// Store holds the selection of one mounted view. It is not safe for
// concurrent use; the owning view serialises access.
type Store struct {
	state State
}

// NewStore starts from initial.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// State returns the current selection.
func (s *Store) State() State { return s.state }

// Dispatch reduces a into the store and reports whether the state changed.
func (s *Store) Dispatch(a Action) (State, bool) {
	next := Reduce(s.state, a)
	changed := next != s.state
	s.state = next
	return next, changed
}

// Replace swaps the whole state, as done on external navigation.
func (s *Store) Replace(next State) bool {
	changed := next != s.state
	s.state = next
	return changed
}
