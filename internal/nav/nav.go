package nav

import (
	"path"
	"strings"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
)

// Item represents a top-level navigation item.
type Item struct {
	Path  string // e.g. "/collections"
	Label string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", Label: "Accueil"},
	{Path: "/collections", Label: "Collections"},
	{Path: "/promo", Label: "Promo"},
	{Path: "/top-vente", Label: "Top Vente"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// exact or prefix boundary: "/collections" or "/collections/..."
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path.
// Known top-level sections use their navigation label; deeper segments are humanized.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", Label: Main[0].Label, Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	if clean == "." || clean == "/" {
		return crumbs
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")

	top := "/" + parts[0]
	label := titleFromSegment(parts[0])
	for _, it := range Main {
		if it.Path == top {
			label = it.Label
			break
		}
	}
	crumbs = append(crumbs, Crumb{Href: top, Label: label, Active: len(parts) == 1})

	href := top
	for i := 1; i < len(parts); i++ {
		href = href + "/" + parts[i]
		crumbs = append(crumbs, Crumb{
			Href:   href,
			Label:  titleFromSegment(parts[i]),
			Active: i == len(parts)-1,
		})
	}
	return crumbs
}

// CollectionCrumbs extends the /collections trail with the selection heading.
func CollectionCrumbs(fs filter.State, heading string) []Crumb {
	crumbs := Breadcrumbs("/collections")
	if !fs.Filtered() && fs.ProductSlug == "" {
		return crumbs
	}
	crumbs[len(crumbs)-1].Active = false
	return append(crumbs, Crumb{
		Href:   "/collections?" + filter.Encode(fs),
		Label:  heading,
		Active: true,
	})
}

func titleFromSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "_", "-")
	return filter.Humanize(seg)
}
