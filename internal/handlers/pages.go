package handlers

import (
	"html/template"
	"strings"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/nav"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/navigation"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

// PageData is the view model for pages using the shared layout.
type PageData struct {
	Title string
	Lang  string

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Menu        nav.Menu

	Collections *CollectionsView
	Placeholder *PlaceholderView
}

// PlaceholderView backs static menu destinations that have no catalogue yet.
type PlaceholderView struct {
	Heading string
	Message string
}

// SortChoice is one option of the sort select.
type SortChoice struct {
	Key      string
	Label    string
	Selected bool
}

// Chip is an active filter that can be removed.
type Chip struct {
	Field string
	Label string
}

// GroupListing lists every category of one group, the target of "Voir plus".
type GroupListing struct {
	Label string
	Items []nav.MenuItem
}

// CollectionsView is the filterable collections page.
type CollectionsView struct {
	Heading  string
	Intro    template.HTML
	Filter   filter.State
	Query    string
	PushURL  string
	Sorts    []SortChoice
	Chips    []Chip
	Group    *GroupListing
	Status   string
	Filtered bool
}

// CollectionsURL is the canonical address of a selection.
func CollectionsURL(fs filter.State) string {
	if q := filter.Encode(fs); q != "" {
		return "/collections?" + q
	}
	return "/collections"
}

// BuildCollectionsView assembles the page from a view snapshot. groupID, when
// set, adds the full category list of that group.
func BuildCollectionsView(snap navigation.Snapshot, intro template.HTML, groupID string, r *Renderer) CollectionsView {
	fs := snap.Filter
	heading := snap.Heading
	if r != nil {
		heading = r.PlainText(heading)
	}
	view := CollectionsView{
		Heading:  heading,
		Intro:    intro,
		Filter:   fs,
		Query:    filter.Encode(fs),
		PushURL:  CollectionsURL(fs),
		Status:   string(snap.Status),
		Filtered: fs.Filtered(),
	}

	for _, opt := range filter.SortOptions {
		view.Sorts = append(view.Sorts, SortChoice{
			Key:      string(opt.Key),
			Label:    opt.Label,
			Selected: opt.Key == fs.Sort,
		})
	}

	if fs.Filtered() {
		label := fs.Category
		if summary, _, ok := taxonomy.Find(snap.Groups, fs.Category); ok {
			label = summary.Name
		}
		view.Chips = append(view.Chips, Chip{Field: string(filter.FieldCategory), Label: label})
	}
	if fs.Collaborator != filter.CollaboratorAll && fs.Collaborator != "" {
		view.Chips = append(view.Chips, Chip{Field: string(filter.FieldCollaborator), Label: filter.Humanize(fs.Collaborator)})
	}
	if fs.ProductSlug != "" {
		view.Chips = append(view.Chips, Chip{Field: string(filter.FieldProduct), Label: heading})
	}

	if id := strings.TrimSpace(groupID); id != "" {
		for _, g := range snap.Groups {
			if g.TechnicalID != id {
				continue
			}
			listing := &GroupListing{Label: g.Label}
			for _, c := range g.Categories {
				listing.Items = append(listing.Items, nav.MenuItem{Name: c.Name, Href: c.Href(), Active: c.QuerySlug == fs.Category})
			}
			view.Group = listing
			break
		}
	}
	return view
}

// BuildCollectionsPage wraps the collections view in the shared layout.
func BuildCollectionsPage(snap navigation.Snapshot, view CollectionsView) PageData {
	return PageData{
		Title:       view.Heading,
		Lang:        "fr",
		Path:        "/collections",
		Nav:         nav.Build("/collections"),
		Breadcrumbs: nav.CollectionCrumbs(snap.Filter, view.Heading),
		Menu:        nav.BuildMenu(snap.Menu, snap.Disclosure, snap.Filter),
		Collections: &view,
	}
}

// BuildPlaceholderPage renders a static menu destination.
func BuildPlaceholderPage(path, heading string, snap navigation.Snapshot) PageData {
	return PageData{
		Title:       heading,
		Lang:        "fr",
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: nav.Breadcrumbs(path),
		Menu:        nav.BuildMenu(snap.Menu, snap.Disclosure, snap.Filter),
		Placeholder: &PlaceholderView{
			Heading: heading,
			Message: "Cette sélection arrive bientôt.",
		},
	}
}
