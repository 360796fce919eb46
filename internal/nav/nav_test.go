package nav

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/disclosure"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

func TestBuildActive(t *testing.T) {
	t.Parallel()

	items := Build("/collections")
	require.Len(t, items, len(Main))
	for _, it := range items {
		require.Equal(t, it.Href == "/collections", it.Active, it.Href)
	}

	home := Build("")
	require.True(t, home[0].Active)
	require.False(t, home[1].Active)

	require.True(t, isActive("/promo", "/promo/ete"))
	require.False(t, isActive("/promo", "/promotions"))
}

func TestBreadcrumbs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []Crumb{{Href: "/", Label: "Accueil", Active: true}}, Breadcrumbs("/"))

	crumbs := Breadcrumbs("/collections/robe_soiree/")
	require.Equal(t, []Crumb{
		{Href: "/", Label: "Accueil"},
		{Href: "/collections", Label: "Collections"},
		{Href: "/collections/robe_soiree", Label: "Robe Soiree", Active: true},
	}, crumbs)

	unknown := Breadcrumbs("/nouveautes-hiver")
	require.Equal(t, "Nouveautes Hiver", unknown[1].Label)
	require.True(t, unknown[1].Active)
}

func TestCollectionCrumbs(t *testing.T) {
	t.Parallel()

	plain := CollectionCrumbs(filter.Default(), filter.AllCollectionsLabel)
	require.Len(t, plain, 2)
	require.True(t, plain[1].Active)

	fs := filter.Reduce(filter.Default(), filter.SetField(filter.FieldCategory, "robes"))
	crumbs := CollectionCrumbs(fs, "Robes")
	require.Len(t, crumbs, 3)
	require.False(t, crumbs[1].Active)
	require.Equal(t, Crumb{Href: "/collections?category=robes", Label: "Robes", Active: true}, crumbs[2])
}

func manyCategories(n int) []taxonomy.Raw {
	raw := make([]taxonomy.Raw, 0, n)
	for i := 1; i <= n; i++ {
		raw = append(raw, taxonomy.Raw{Name: fmt.Sprintf("Modele %02d", i), Group: taxonomy.GroupFemme})
	}
	return raw
}

func TestBuildMenuWide(t *testing.T) {
	t.Parallel()

	cfg := taxonomy.DefaultConfig()
	raw := append(manyCategories(12), taxonomy.Raw{Name: "Sacs", Group: taxonomy.GroupAccessoire})
	menu := taxonomy.Menu(cfg, taxonomy.Normalize(cfg, raw))
	fs := filter.Reduce(filter.Default(), filter.SetField(filter.FieldCategory, "sacs"))

	got := BuildMenu(menu, disclosure.State{OpenGroup: "Femme"}, fs)
	require.False(t, got.Compact)
	require.Len(t, got.Groups, 4)

	femme := got.Groups[0]
	require.True(t, femme.Open)
	require.False(t, femme.Active)
	require.Len(t, femme.Items, 12, "wide dropdown lists every category")
	require.Nil(t, femme.More)

	acc := got.Groups[1]
	require.True(t, acc.Active)
	require.Equal(t, []MenuItem{{Name: "Sacs", Href: "/collections?category=sacs&group=ACCESSOIRE", Active: true}}, acc.Items)

	require.Equal(t, MenuGroup{Label: "Promo", Href: "/promo", IsLink: true}, got.Groups[2])
	require.Equal(t, MenuGroup{Label: "Top Vente", Href: "/top-vente", IsLink: true}, got.Groups[3])
}

func TestBuildMenuCompactTruncates(t *testing.T) {
	t.Parallel()

	cfg := taxonomy.DefaultConfig()
	menu := taxonomy.Menu(cfg, taxonomy.Normalize(cfg, manyCategories(13)))

	closed := BuildMenu(menu, disclosure.State{Compact: true, PanelOpen: true}, filter.Default())
	require.Empty(t, closed.Groups[0].Items, "closed groups render no items in the panel")

	open := BuildMenu(menu, disclosure.State{Compact: true, PanelOpen: true, OpenGroup: "Femme"}, filter.Default())
	femme := open.Groups[0]
	require.Len(t, femme.Items, CompactItemLimit)
	require.Equal(t, "Modele 01", femme.Items[0].Name)
	require.Equal(t, &MoreLink{Label: "Voir plus (3)", Href: "/collections?group=FEMME", Remaining: 3}, femme.More)
	require.True(t, open.PanelOpen)
}

func TestBuildMenuFallback(t *testing.T) {
	t.Parallel()

	got := BuildMenu(taxonomy.Fallback(taxonomy.DefaultConfig()), disclosure.State{}, filter.Default())
	require.Len(t, got.Groups, 2)
	for _, g := range got.Groups {
		require.True(t, g.IsLink)
	}
}
