package taxonomy

import (
	"net/url"
	"strings"
)

// Default technical group identifiers used by the shop catalogue.
const (
	GroupFemme      = "FEMME"
	GroupEnfant     = "ENFANT"
	GroupAccessoire = "ACCESSOIRE"
)

// Raw is a category record as returned by a taxonomy source. Group may be empty.
type Raw struct {
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

// Summary is a leaf category inside a group.
type Summary struct {
	Name        string `json:"name"`
	QuerySlug   string `json:"query"`
	TechnicalID string `json:"group"`
}

// Href returns the collections link for the category.
func (s Summary) Href() string {
	q := url.Values{}
	q.Set("category", s.QuerySlug)
	if s.TechnicalID != "" {
		q.Set("group", s.TechnicalID)
	}
	return "/collections?" + q.Encode()
}

// Group is a top-level menu entry. Static link entries carry an Href and no categories.
type Group struct {
	Label       string    `json:"label"`
	TechnicalID string    `json:"technicalGroupId,omitempty"`
	Categories  []Summary `json:"categories,omitempty"`
	Href        string    `json:"url,omitempty"`
}

// IsLink reports whether the group is a static link rather than a disclosure.
func (g Group) IsLink() bool { return g.Href != "" }

// Link is a static menu entry that always follows the fetched groups.
type Link struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"url" json:"url"`
}

// Config fixes the presentation rules applied by Normalize.
type Config struct {
	Order        []string
	Labels       map[string]string
	DefaultGroup string
	StaticLinks  []Link
	Intro        string
}

// DefaultConfig mirrors the shop's menu: Femme, Enfants, Accessoires, then Promo and Top Vente.
func DefaultConfig() Config {
	return Config{
		Order: []string{GroupFemme, GroupEnfant, GroupAccessoire},
		Labels: map[string]string{
			GroupFemme:      "Femme",
			GroupEnfant:     "Enfants",
			GroupAccessoire: "Accessoires",
		},
		DefaultGroup: GroupFemme,
		StaticLinks: []Link{
			{Label: "Promo", Href: "/promo"},
			{Label: "Top Vente", Href: "/top-vente"},
		},
		Intro: "Découvrez notre dernière collection de pièces élégantes et intemporelles",
	}
}

// Label maps a technical group id to its display name; unknown ids pass through.
func (c Config) Label(technicalID string) string {
	if label, ok := c.Labels[technicalID]; ok && label != "" {
		return label
	}
	return technicalID
}

// QuerySlug lowercases name and joins its whitespace-separated words with single hyphens.
func QuerySlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Normalize buckets raw categories by group and emits the buckets in cfg.Order.
// Records without a group land in cfg.DefaultGroup; buckets absent from raw are skipped.
func Normalize(cfg Config, raw []Raw) []Group {
	buckets := make(map[string][]Summary, len(cfg.Order))
	for _, rec := range raw {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			continue
		}
		group := strings.TrimSpace(rec.Group)
		if group == "" {
			group = cfg.DefaultGroup
		}
		buckets[group] = append(buckets[group], Summary{
			Name:        name,
			QuerySlug:   QuerySlug(name),
			TechnicalID: group,
		})
	}

	groups := make([]Group, 0, len(cfg.Order))
	for _, id := range cfg.Order {
		cats := buckets[id]
		if len(cats) == 0 {
			continue
		}
		groups = append(groups, Group{
			Label:       cfg.Label(id),
			TechnicalID: id,
			Categories:  cats,
		})
	}
	return groups
}

// Menu appends the configured static links to the normalized groups.
func Menu(cfg Config, groups []Group) []Group {
	out := make([]Group, 0, len(groups)+len(cfg.StaticLinks))
	out = append(out, groups...)
	for _, link := range cfg.StaticLinks {
		out = append(out, Group{Label: link.Label, Href: link.Href})
	}
	return out
}

// Fallback is the minimal menu used when no taxonomy was ever loaded.
func Fallback(cfg Config) []Group {
	return Menu(cfg, nil)
}

// Find returns the category whose query slug matches slug.
func Find(groups []Group, slug string) (Summary, Group, bool) {
	for _, g := range groups {
		for _, c := range g.Categories {
			if c.QuerySlug == slug {
				return c, g, true
			}
		}
	}
	return Summary{}, Group{}, false
}
