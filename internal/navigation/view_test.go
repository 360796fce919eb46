package navigation

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/disclosure"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var sampleRaw = []taxonomy.Raw{
	{Name: "Robes", Group: taxonomy.GroupFemme},
	{Name: "Kaftans", Group: taxonomy.GroupFemme},
	{Name: "Tuniques"},
	{Name: "Robes Fille", Group: taxonomy.GroupEnfant},
	{Name: "Sacs", Group: taxonomy.GroupAccessoire},
}

type gateSource struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
	raw     []taxonomy.Raw
	err     error
}

func newGateSource(raw []taxonomy.Raw, err error) *gateSource {
	return &gateSource{release: make(chan struct{}), started: make(chan struct{}), raw: raw, err: err}
}

// FetchCategories ignores ctx so a result can arrive after cancellation.
func (s *gateSource) FetchCategories(context.Context) ([]taxonomy.Raw, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.raw, s.err
}

type env struct {
	loc      *MemoryLocation
	viewport *MemoryViewport
	clicks   *MemoryClicks
	lock     *disclosure.DocumentScroll
	registry *prometheus.Registry
	metrics  *Metrics
	holder   *taxonomy.Holder
}

func newEnv(t *testing.T, query string, compact bool) *env {
	t.Helper()
	q, err := url.ParseQuery(query)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)
	return &env{
		loc:      NewMemoryLocation(q),
		viewport: NewMemoryViewport(compact),
		clicks:   NewMemoryClicks(),
		lock:     &disclosure.DocumentScroll{},
		registry: reg,
		metrics:  metrics,
		holder:   &taxonomy.Holder{},
	}
}

func (e *env) mount(t *testing.T, source taxonomy.Source, initial []taxonomy.Group) *View {
	t.Helper()
	v, err := Mount(context.Background(), Deps{
		Source:      source,
		Location:    e.loc,
		Viewport:    e.viewport,
		Clicks:      e.clicks,
		ScrollLock:  e.lock,
		Metrics:     e.metrics,
		Initial:     initial,
		IDGenerator: func() string { return "test-mount" },
	}, WithHolder(e.holder))
	require.NoError(t, err)
	t.Cleanup(func() {
		v.Unmount()
		waitSettled(t, v)
	})
	return v
}

func staticSource(raw []taxonomy.Raw) taxonomy.Source {
	return taxonomy.SourceFunc(func(context.Context) ([]taxonomy.Raw, error) { return raw, nil })
}

func failingSource() taxonomy.Source {
	return taxonomy.SourceFunc(func(context.Context) ([]taxonomy.Raw, error) {
		return nil, taxonomy.ErrSourceUnavailable
	})
}

func waitSettled(t *testing.T, v *View) {
	t.Helper()
	select {
	case <-v.Settled():
	case <-time.After(2 * time.Second):
		t.Fatalf("view did not settle")
	}
}

func TestMountRequiresDependencies(t *testing.T) {
	_, err := Mount(context.Background(), Deps{Location: NewMemoryLocation(nil)})
	require.ErrorIs(t, err, ErrMissingDependency)

	_, err = Mount(context.Background(), Deps{Source: staticSource(nil)})
	require.ErrorIs(t, err, ErrMissingDependency)
}

func TestMountLoadsTaxonomyAndDecodesAddress(t *testing.T) {
	e := newEnv(t, "sort=price-asc&collaborator=atelier", false)
	source := newGateSource(sampleRaw, nil)
	v := e.mount(t, source, nil)

	require.Equal(t, StatusLoading, v.Status())
	require.Equal(t, filter.State{
		Category:     filter.CategoryAll,
		Collaborator: "atelier",
		Sort:         filter.SortPriceAsc,
	}, v.Filter())
	require.Equal(t, taxonomy.Fallback(taxonomy.DefaultConfig()), v.Menu(), "menu shows the static links while loading")

	close(source.release)
	waitSettled(t, v)

	want := taxonomy.Normalize(taxonomy.DefaultConfig(), sampleRaw)
	if diff := cmp.Diff(want, v.Groups()); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, StatusReady, v.Status())
	require.Len(t, v.Menu(), len(want)+2)

	stored, ok := e.holder.Load()
	require.True(t, ok)
	require.Len(t, stored, 3)
	require.Equal(t, float64(1), testutil.ToFloat64(e.metrics.FetchCounter().WithLabelValues(OutcomeSuccess)))
	require.Empty(t, e.loc.Pushed(), "mounting never rewrites the address")
}

func TestLateFetchAfterUnmountIsIgnored(t *testing.T) {
	e := newEnv(t, "", true)
	source := newGateSource(sampleRaw, nil)
	v := e.mount(t, source, nil)

	<-source.started
	v.TogglePanel()
	require.True(t, e.lock.Locked())

	v.Unmount()
	require.False(t, e.lock.Locked(), "unmount releases the scroll lock")
	require.Zero(t, e.loc.Subscribers())
	require.Zero(t, e.viewport.Subscribers())
	require.Zero(t, e.clicks.Subscribers(RegionNavbar))

	close(source.release)
	waitSettled(t, v)

	require.Empty(t, v.Groups(), "late result must not be applied")
	require.Equal(t, StatusLoading, v.Status())
	_, stored := e.holder.Load()
	require.False(t, stored)
	require.Equal(t, float64(1), testutil.ToFloat64(e.metrics.FetchCounter().WithLabelValues(OutcomeDiscarded)))

	v.Unmount()
	require.Equal(t, filter.Default(), v.SetField(filter.FieldSort, "newest"), "operations after unmount are no-ops")
	require.Empty(t, e.loc.Pushed())
}

func TestFetchFailureFallsBackOrKeepsPrevious(t *testing.T) {
	t.Run("no previous value installs the fallback", func(t *testing.T) {
		e := newEnv(t, "", false)
		v := e.mount(t, failingSource(), nil)
		waitSettled(t, v)

		require.Equal(t, StatusFallback, v.Status())
		require.Empty(t, v.Groups())
		require.Equal(t, taxonomy.Fallback(taxonomy.DefaultConfig()), v.Menu())
		require.Equal(t, float64(1), testutil.ToFloat64(e.metrics.FetchCounter().WithLabelValues(OutcomeError)))
	})

	t.Run("previous value is retained", func(t *testing.T) {
		e := newEnv(t, "", false)
		previous := taxonomy.Normalize(taxonomy.DefaultConfig(), sampleRaw[:2])
		v := e.mount(t, failingSource(), previous)
		waitSettled(t, v)

		require.Equal(t, StatusStale, v.Status())
		require.Equal(t, previous, v.Groups())
	})
}

func TestRefresh(t *testing.T) {
	e := newEnv(t, "", false)
	calls := 0
	var mu sync.Mutex
	source := taxonomy.SourceFunc(func(context.Context) ([]taxonomy.Raw, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return sampleRaw[:1], nil
		}
		return nil, errors.New("catalogue down")
	})
	v := e.mount(t, source, nil)
	waitSettled(t, v)
	require.Len(t, v.Groups(), 1)

	err := v.Refresh(context.Background())
	require.ErrorContains(t, err, "catalogue down")
	require.Len(t, v.Groups(), 1, "failed refresh keeps the loaded groups")
	require.Equal(t, StatusStale, v.Status())
}

func TestSetFieldPushesWithoutFeedbackLoop(t *testing.T) {
	e := newEnv(t, "", false)
	v := e.mount(t, staticSource(sampleRaw), nil)
	waitSettled(t, v)

	st := v.SetField(filter.FieldSort, "price-desc")
	require.Equal(t, filter.SortPriceDesc, st.Sort)
	require.Equal(t, []string{"sort=price-desc"}, e.loc.Pushed())

	// setting the same value again changes nothing and pushes nothing.
	v.SetField(filter.FieldSort, "price-desc")
	require.Len(t, e.loc.Pushed(), 1)

	v.SetField(filter.FieldCategory, "robes")
	require.Equal(t, "category=robes&sort=price-desc", e.loc.Pushed()[1])
	require.Equal(t, "Robes", v.Heading())

	v.SetField(filter.FieldProduct, "caftan-brode")
	require.Equal(t, "Caftan Brode", v.Heading())

	v.Clear()
	require.Equal(t, filter.Default(), v.Filter())
	last, _ := e.loc.LastPushed()
	require.Equal(t, "", last)
	require.Equal(t, filter.AllCollectionsLabel, v.Heading())
}

func TestExternalNavigationReplacesState(t *testing.T) {
	e := newEnv(t, "sort=newest", false)
	v := e.mount(t, staticSource(sampleRaw), nil)
	waitSettled(t, v)

	e.loc.Navigate(url.Values{"category": {"kaftans"}, "collaborator": {"maison"}})
	require.Equal(t, filter.State{
		Category:     "kaftans",
		Collaborator: "maison",
		Sort:         filter.SortFeatured,
	}, v.Filter(), "external change replaces the whole selection")
	require.Empty(t, e.loc.Pushed(), "applying an external change never pushes")

	e.loc.Navigate(url.Values{"category": {"unknown-slug"}})
	require.Equal(t, filter.CategoryAll, v.Filter().Category, "categories outside the taxonomy fall back to all")
}

func TestAsynchronousEchoIsDropped(t *testing.T) {
	e := newEnv(t, "", false)
	e.loc.Silence()
	v := e.mount(t, staticSource(sampleRaw), nil)
	waitSettled(t, v)

	v.SetField(filter.FieldSort, "newest")
	v.SetField(filter.FieldCollaborator, "atelier")
	last, ok := e.loc.LastPushed()
	require.True(t, ok)

	// a delayed echo of the last push is consumed without touching the store.
	echo, err := url.ParseQuery(last)
	require.NoError(t, err)
	v.onLocation(echo)
	require.Equal(t, "atelier", v.Filter().Collaborator)

	// going back to an earlier address is a genuine navigation.
	e.loc.Navigate(url.Values{"sort": {"newest"}})
	require.Equal(t, filter.SortNewest, v.Filter().Sort)
	require.Equal(t, filter.CollaboratorAll, v.Filter().Collaborator)
}

// racingLocation moves the address to external from another goroutine
// while the first Replace is still running.
type racingLocation struct {
	*MemoryLocation
	external url.Values
	once     sync.Once
	done     chan struct{}
}

func (l *racingLocation) Replace(q url.Values) {
	l.MemoryLocation.Replace(q)
	l.once.Do(func() {
		l.mu.Lock()
		l.query = cloneValues(l.external)
		l.mu.Unlock()
		go func() {
			defer close(l.done)
			l.subs.notify(cloneValues(l.external))
		}()
	})
}

func TestExternalNavigationDuringPushIsApplied(t *testing.T) {
	loc := &racingLocation{
		MemoryLocation: NewMemoryLocation(nil),
		external:       url.Values{"sort": {"price-asc"}},
		done:           make(chan struct{}),
	}
	v, err := Mount(context.Background(), Deps{
		Source:   staticSource(sampleRaw),
		Location: loc,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		v.Unmount()
		waitSettled(t, v)
	})
	waitSettled(t, v)

	v.SetField(filter.FieldSort, "newest")
	select {
	case <-loc.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("external navigation was not delivered")
	}

	require.Equal(t, "sort=price-asc", loc.Query().Encode())
	require.Equal(t, filter.SortPriceAsc, v.Filter().Sort, "store follows the address")
}

func TestClearRemovesCategoryAcceptedBeforeLoad(t *testing.T) {
	e := newEnv(t, "", false)
	source := newGateSource(sampleRaw, nil)
	v := e.mount(t, source, nil)

	v.SetField(filter.FieldCategory, "burnous")
	require.Equal(t, "category=burnous", e.loc.Query().Encode())

	close(source.release)
	waitSettled(t, v)

	require.Equal(t, filter.Default(), v.Clear())
	require.Equal(t, "", e.loc.Query().Encode())
	last, ok := e.loc.LastPushed()
	require.True(t, ok)
	require.Equal(t, "", last)
}

func TestDisclosureEvents(t *testing.T) {
	e := newEnv(t, "", true)
	v := e.mount(t, staticSource(sampleRaw), nil)
	waitSettled(t, v)

	v.ToggleGroup("Femme")
	st := v.TogglePanel()
	require.True(t, st.PanelOpen)
	require.True(t, e.lock.Locked())

	e.viewport.Resize(false)
	st = v.Disclosure()
	require.False(t, st.PanelOpen, "growing past the breakpoint closes the panel")
	require.Equal(t, "Femme", st.OpenGroup)
	require.False(t, e.lock.Locked())

	e.clicks.Click(RegionNavbar, true)
	require.Equal(t, "Femme", v.Disclosure().OpenGroup, "clicks inside the menu keep it open")

	e.clicks.Click(RegionNavbar, false)
	require.Equal(t, disclosure.State{}, v.Disclosure())
}

func TestCategoryResetToAllClosesDisclosure(t *testing.T) {
	e := newEnv(t, "category=robes", true)
	v := e.mount(t, staticSource(sampleRaw), nil)
	waitSettled(t, v)

	v.ToggleGroup("Femme")
	v.TogglePanel()

	v.SetField(filter.FieldCategory, "all")
	st := v.Disclosure()
	require.Equal(t, "", st.OpenGroup)
	require.False(t, st.PanelOpen)
	require.False(t, e.lock.Locked())
}

func TestSelectCategory(t *testing.T) {
	e := newEnv(t, "sort=newest", true)
	v := e.mount(t, staticSource(sampleRaw), nil)
	waitSettled(t, v)

	v.ToggleGroup("Accessoires")
	v.TogglePanel()

	st := v.SelectCategory("robes-fille")
	require.Equal(t, filter.State{
		Category:     "robes-fille",
		Collaborator: filter.CollaboratorAll,
		Sort:         filter.SortFeatured,
	}, st)
	last, _ := e.loc.LastPushed()
	require.Equal(t, "category=robes-fille&group=ENFANT", last)

	ds := v.Disclosure()
	require.False(t, ds.PanelOpen)
	require.Equal(t, "Enfants", ds.OpenGroup)
	require.False(t, e.lock.Locked())
	require.Equal(t, "Robes Fille", v.Heading())
}

func TestSnapshotIsConsistent(t *testing.T) {
	e := newEnv(t, "category=sacs&sort=price-asc", false)
	v := e.mount(t, staticSource(sampleRaw), nil)
	waitSettled(t, v)

	snap := v.Snapshot()
	require.Equal(t, "test-mount", snap.ID)
	require.Equal(t, "Sacs", snap.Heading)
	require.Equal(t, "category=sacs&sort=price-asc", snap.Query.Encode())
	require.Equal(t, StatusReady, snap.Status)
	require.Len(t, snap.Menu, 5)
}

func TestConcurrentCallbacksKeepInvariants(t *testing.T) {
	e := newEnv(t, "", true)
	v := e.mount(t, staticSource(sampleRaw), nil)

	labels := []string{"Femme", "Enfants", "Accessoires"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 5 {
				case 0:
					v.ToggleGroup(labels[j%len(labels)])
				case 1:
					v.TogglePanel()
				case 2:
					e.viewport.Resize(j%2 == 0)
				case 3:
					e.clicks.Click(RegionNavbar, false)
				case 4:
					v.SetField(filter.FieldSort, string(filter.SortOptions[j%len(filter.SortOptions)].Key))
				}
				st := v.Disclosure()
				if st.PanelOpen && !st.Compact {
					t.Errorf("panel open on a wide viewport: %+v", st)
				}
			}
		}(i)
	}
	wg.Wait()
	waitSettled(t, v)

	v.Unmount()
	require.False(t, e.lock.Locked())
}
