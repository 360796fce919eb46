package main

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/disclosure"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/handlers"
	mw "github.com/taha-yassine-romdhane/Dar-koftan/internal/middleware"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/nav"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/navigation"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/platform/httpx"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/platform/requestctx"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

// mounted is a per-request navigation view together with its address.
type mounted struct {
	view     *navigation.View
	location *navigation.MemoryLocation
}

// address is the current location as a collections URL.
func (m mounted) address() string {
	if q := m.location.Query().Encode(); q != "" {
		return "/collections?" + q
	}
	return "/collections"
}

// mount builds a view over q and waits for its first taxonomy fetch. The
// caller must Unmount it.
func (s *server) mount(r *http.Request, q url.Values) (mounted, error) {
	ctx := r.Context()
	initial, _ := s.holder.Load()
	loc := navigation.NewMemoryLocation(q)
	view, err := navigation.Mount(ctx, navigation.Deps{
		Source:     s.source,
		Location:   loc,
		Viewport:   navigation.NewMemoryViewport(mw.Viewport(ctx).Compact),
		Clicks:     navigation.NewMemoryClicks(),
		ScrollLock: &disclosure.DocumentScroll{},
		Config:     s.taxonomy,
		Logger:     requestctx.Logger(ctx),
		Metrics:    s.metrics,
		Initial:    initial,
	}, navigation.WithHolder(s.holder), navigation.WithFetchTimeout(s.fetchTimeout))
	if err != nil {
		return mounted{}, err
	}
	select {
	case <-view.Settled():
	case <-ctx.Done():
	}
	return mounted{view: view, location: loc}, nil
}

// applyDisclosure replays menu interactions carried on plain links.
func applyDisclosure(view *navigation.View, q url.Values) {
	if open := strings.TrimSpace(q.Get("open")); open != "" {
		view.ToggleGroup(open)
	}
	if q.Get("panel") == "1" {
		view.TogglePanel()
	}
}

func (s *server) mountFailed(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("mount navigation", zap.Error(err))
	httpx.WriteError(r.Context(), w, httpx.NewError("navigation_unavailable", "navigation unavailable", http.StatusInternalServerError))
}

func (s *server) collectionsView(snap navigation.Snapshot, groupID string) handlers.CollectionsView {
	return handlers.BuildCollectionsView(snap, s.intro, groupID, s.content)
}

// handleCollections renders the collections page, or its results fragment for htmx.
func (s *server) handleCollections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := s.mount(r, q)
	if err != nil {
		s.mountFailed(w, r, err)
		return
	}
	defer m.view.Unmount()
	applyDisclosure(m.view, q)

	snap := m.view.Snapshot()
	view := s.collectionsView(snap, q.Get("group"))
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Push-Url", r.URL.RequestURI())
		s.tmpl.renderTemplate(w, r, "frag_collections_results", view)
		return
	}
	s.tmpl.renderPage(w, r, "collections", handlers.BuildCollectionsPage(snap, view))
}

// handleCollectionsResults always returns the results fragment with its canonical URL.
func (s *server) handleCollectionsResults(w http.ResponseWriter, r *http.Request) {
	m, err := s.mount(r, r.URL.Query())
	if err != nil {
		s.mountFailed(w, r, err)
		return
	}
	defer m.view.Unmount()

	view := s.collectionsView(m.view.Snapshot(), "")
	w.Header().Set("HX-Push-Url", view.PushURL)
	s.tmpl.renderTemplate(w, r, "frag_collections_results", view)
}

// currentQuery is the address the htmx request was issued from.
func currentQuery(r *http.Request) url.Values {
	if raw := r.Header.Get("HX-Current-URL"); raw != "" {
		if u, err := url.Parse(raw); err == nil {
			return u.Query()
		}
	}
	return r.URL.Query()
}

// handleFilters changes one filter field, or clears them all.
func (s *server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_form", "invalid form body", http.StatusBadRequest))
		return
	}

	var field filter.Field
	clearAll := r.PostForm.Get("clear") == "1"
	if !clearAll {
		parsed, err := filter.ParseField(r.PostForm.Get("key"))
		if err != nil {
			httpx.WriteError(r.Context(), w, httpx.NewError("unknown_field", "unknown filter field", http.StatusBadRequest).
				WithDetails(map[string]any{"field": r.PostForm.Get("key")}))
			return
		}
		field = parsed
	}

	m, err := s.mount(r, currentQuery(r))
	if err != nil {
		s.mountFailed(w, r, err)
		return
	}
	defer m.view.Unmount()

	if clearAll {
		m.view.Clear()
	} else {
		m.view.SetField(field, r.PostForm.Get("value"))
	}

	view := s.collectionsView(m.view.Snapshot(), "")
	w.Header().Set("HX-Push-Url", m.address())
	s.tmpl.renderTemplate(w, r, "frag_collections_results", view)
}

// handleSelectCategory follows a menu category link: the selection resets to
// that category alone and the address carries its group.
func (s *server) handleSelectCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_form", "invalid form body", http.StatusBadRequest))
		return
	}
	slug := strings.TrimSpace(r.PostForm.Get("category"))
	if slug == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("missing_category", "category is required", http.StatusBadRequest))
		return
	}

	m, err := s.mount(r, currentQuery(r))
	if err != nil {
		s.mountFailed(w, r, err)
		return
	}
	defer m.view.Unmount()

	m.view.SelectCategory(slug)
	view := s.collectionsView(m.view.Snapshot(), "")
	w.Header().Set("HX-Push-Url", m.address())
	s.tmpl.renderTemplate(w, r, "frag_collections_results", view)
}

func (s *server) placeholder(path, heading string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		m, err := s.mount(r, q)
		if err != nil {
			s.mountFailed(w, r, err)
			return
		}
		defer m.view.Unmount()
		applyDisclosure(m.view, q)
		s.tmpl.renderPage(w, r, "placeholder", handlers.BuildPlaceholderPage(path, heading, m.view.Snapshot()))
	}
}

type navigationResponse struct {
	ID         string           `json:"id"`
	Status     string           `json:"status"`
	Filter     filterResponse   `json:"filter"`
	Query      string           `json:"query"`
	Heading    string           `json:"heading"`
	Disclosure disclosureState  `json:"disclosure"`
	Menu       nav.Menu         `json:"menu"`
	Groups     []taxonomy.Group `json:"groups"`
}

type filterResponse struct {
	Category     string `json:"category"`
	Collaborator string `json:"collaborator"`
	Sort         string `json:"sort"`
	ProductSlug  string `json:"productSlug,omitempty"`
}

type disclosureState struct {
	OpenGroup string `json:"openGroup,omitempty"`
	PanelOpen bool   `json:"panelOpen"`
	Compact   bool   `json:"compact"`
}

// handleNavigationAPI exposes the navigation state for the current address as JSON.
func (s *server) handleNavigationAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := s.mount(r, q)
	if err != nil {
		s.mountFailed(w, r, err)
		return
	}
	defer m.view.Unmount()
	applyDisclosure(m.view, q)

	snap := m.view.Snapshot()
	groups := snap.Groups
	if groups == nil {
		groups = []taxonomy.Group{}
	}
	httpx.WriteJSON(w, http.StatusOK, navigationResponse{
		ID:     snap.ID,
		Status: string(snap.Status),
		Filter: filterResponse{
			Category:     snap.Filter.Category,
			Collaborator: snap.Filter.Collaborator,
			Sort:         string(snap.Filter.Sort),
			ProductSlug:  snap.Filter.ProductSlug,
		},
		Query:   filter.Encode(snap.Filter),
		Heading: snap.Heading,
		Disclosure: disclosureState{
			OpenGroup: snap.Disclosure.OpenGroup,
			PanelOpen: snap.Disclosure.PanelOpen,
			Compact:   snap.Disclosure.Compact,
		},
		Menu:   nav.BuildMenu(snap.Menu, snap.Disclosure, snap.Filter),
		Groups: groups,
	})
}
