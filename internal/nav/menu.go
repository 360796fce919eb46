// Package nav turns navigation state into template view models.
package nav

import (
	"fmt"
	"net/url"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/disclosure"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

// CompactItemLimit caps the categories listed under a group in the mobile panel.
const CompactItemLimit = 10

// MenuItem is one category link.
type MenuItem struct {
	Name   string `json:"name"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// MoreLink points to the full group listing when the compact list is truncated.
type MoreLink struct {
	Label     string `json:"label"`
	Href      string `json:"href"`
	Remaining int    `json:"remaining"`
}

// MenuGroup is a rendered top-level entry.
type MenuGroup struct {
	Label       string     `json:"label"`
	TechnicalID string     `json:"technicalGroupId,omitempty"`
	Href        string     `json:"url,omitempty"`
	IsLink      bool       `json:"isLink"`
	Open        bool       `json:"open"`
	Active      bool       `json:"active"`
	Items       []MenuItem `json:"items,omitempty"`
	More        *MoreLink  `json:"more,omitempty"`
}

// Menu is the whole rendered menu.
type Menu struct {
	Groups    []MenuGroup `json:"groups"`
	PanelOpen bool        `json:"panelOpen"`
	Compact   bool        `json:"compact"`
}

// BuildMenu renders menu groups for the current disclosure and selection.
// The wide layout lists every category of every group as a dropdown. The
// compact layout lists categories only under the open group, truncated to
// CompactItemLimit with a link to the full group.
func BuildMenu(menu []taxonomy.Group, ds disclosure.State, fs filter.State) Menu {
	out := Menu{
		Groups:    make([]MenuGroup, 0, len(menu)),
		PanelOpen: ds.PanelOpen,
		Compact:   ds.Compact,
	}
	for _, g := range menu {
		if g.IsLink() {
			out.Groups = append(out.Groups, MenuGroup{Label: g.Label, Href: g.Href, IsLink: true})
			continue
		}

		rendered := MenuGroup{
			Label:       g.Label,
			TechnicalID: g.TechnicalID,
			Open:        ds.GroupOpen(g.Label),
		}
		for _, c := range g.Categories {
			if c.QuerySlug == fs.Category {
				rendered.Active = true
				break
			}
		}

		cats := g.Categories
		if ds.Compact {
			if !rendered.Open {
				cats = nil
			} else if len(cats) > CompactItemLimit {
				remaining := len(cats) - CompactItemLimit
				rendered.More = &MoreLink{
					Label:     fmt.Sprintf("Voir plus (%d)", remaining),
					Href:      "/collections?" + url.Values{"group": {groupID(g)}}.Encode(),
					Remaining: remaining,
				}
				cats = cats[:CompactItemLimit]
			}
		}
		rendered.Items = make([]MenuItem, 0, len(cats))
		for _, c := range cats {
			rendered.Items = append(rendered.Items, MenuItem{
				Name:   c.Name,
				Href:   c.Href(),
				Active: c.QuerySlug == fs.Category,
			})
		}
		out.Groups = append(out.Groups, rendered)
	}
	return out
}

func groupID(g taxonomy.Group) string {
	if g.TechnicalID != "" {
		return g.TechnicalID
	}
	if len(g.Categories) > 0 {
		return g.Categories[0].TechnicalID
	}
	return ""
}
