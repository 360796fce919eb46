// Package navigation mounts the storefront menu and filter engine for one
// view: it loads the taxonomy, keeps the filter selection and the address in
// step, and drives the menu disclosure from clicks and viewport changes.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/disclosure"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/filter"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/lifecycle"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

// ErrMissingDependency is returned by Mount when a required dependency is nil.
var ErrMissingDependency = errors.New("navigation: missing dependency")

var tracer = otel.Tracer("github.com/taha-yassine-romdhane/Dar-koftan/internal/navigation")

// Status describes where the current group list came from.
type Status string

const (
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusStale    Status = "stale"
	StatusFallback Status = "fallback"
)

// Deps wires a view to its environment. Source and Location are required.
type Deps struct {
	Source      taxonomy.Source
	Location    Location
	Viewport    Viewport
	Clicks      Clicks
	ScrollLock  disclosure.ScrollLock
	Config      taxonomy.Config
	Logger      *zap.Logger
	Metrics     *Metrics
	Initial     []taxonomy.Group
	IDGenerator func() string
}

// Option tunes a mount.
type Option func(*options)

type options struct {
	fetchTimeout time.Duration
	holder       *taxonomy.Holder
	tracer       trace.Tracer
}

// WithFetchTimeout bounds each taxonomy fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

// WithHolder publishes every successfully loaded group list to h.
func WithHolder(h *taxonomy.Holder) Option {
	return func(o *options) { o.holder = h }
}

// WithTracer replaces the package tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// View is one mounted navigation engine. Every callback and operation runs
// under a single mutex, so they interleave but never preempt each other.
type View struct {
	mu sync.Mutex

	id      string
	cfg     taxonomy.Config
	source  taxonomy.Source
	logger  *zap.Logger
	metrics *Metrics
	opts    options

	guard     *lifecycle.Guard
	listeners *lifecycle.Listeners
	urlSync   *Synchronizer
	store     *filter.Store
	machine   *disclosure.Machine

	groups []taxonomy.Group
	status Status

	cancel  context.CancelFunc
	settled chan struct{}
}

// Snapshot is a consistent copy of the view state.
type Snapshot struct {
	ID         string
	Filter     filter.State
	Disclosure disclosure.State
	Groups     []taxonomy.Group
	Menu       []taxonomy.Group
	Heading    string
	Status     Status
	Query      url.Values
}

// Mount builds a view, subscribes to its environment and starts loading the taxonomy.
func Mount(ctx context.Context, deps Deps, opts ...Option) (*View, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("%w: source", ErrMissingDependency)
	}
	if deps.Location == nil {
		return nil, fmt.Errorf("%w: location", ErrMissingDependency)
	}

	o := options{tracer: tracer}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cfg := deps.Config
	if len(cfg.Order) == 0 {
		cfg = taxonomy.DefaultConfig()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := idGen()

	v := &View{
		id:        id,
		cfg:       cfg,
		source:    deps.Source,
		logger:    logger.With(zap.String("mountID", id)),
		metrics:   deps.Metrics,
		opts:      o,
		guard:     lifecycle.NewGuard(),
		listeners: lifecycle.NewListeners(),
		urlSync:   NewSynchronizer(deps.Location),
		status:    StatusLoading,
		settled:   make(chan struct{}),
	}
	if len(deps.Initial) > 0 {
		v.groups = append([]taxonomy.Group(nil), deps.Initial...)
	}

	compact := false
	if deps.Viewport != nil {
		compact = deps.Viewport.Compact()
	}
	v.machine = disclosure.New(compact, deps.ScrollLock)
	v.store = filter.NewStore(v.urlSync.Decode(v.validator()))

	if err := v.listeners.Add("location", deps.Location.Subscribe(v.onLocation)); err != nil {
		return nil, err
	}
	if deps.Viewport != nil {
		if err := v.listeners.Add("viewport", deps.Viewport.Subscribe(v.onViewport)); err != nil {
			v.listeners.Close()
			return nil, err
		}
	}
	if deps.Clicks != nil {
		if err := v.listeners.Add("click:"+RegionNavbar, deps.Clicks.Subscribe(RegionNavbar, v.onClick)); err != nil {
			v.listeners.Close()
			return nil, err
		}
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	ticket := v.guard.Begin()
	v.logger.Debug("navigation mounted", zap.Bool("compact", compact), zap.Int("initialGroups", len(v.groups)))

	go func() {
		defer close(v.settled)
		_ = v.load(fetchCtx, ticket)
	}()
	return v, nil
}

// ID identifies the mount in logs.
func (v *View) ID() string { return v.id }

// Settled is closed once the initial taxonomy fetch has finished, applied or not.
func (v *View) Settled() <-chan struct{} { return v.settled }

// Refresh fetches the taxonomy again and applies it if the view is still mounted.
func (v *View) Refresh(ctx context.Context) error {
	return v.load(ctx, v.guard.Begin())
}

func (v *View) load(ctx context.Context, ticket lifecycle.Ticket) error {
	if v.opts.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.opts.fetchTimeout)
		defer cancel()
	}
	ctx, span := v.opts.tracer.Start(ctx, "navigation.taxonomy.fetch")
	span.SetAttributes(attribute.String("storefront.mount_id", v.id))
	defer span.End()

	raw, err := v.source.FetchCategories(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !ticket.Active() {
		v.metrics.observeFetch(OutcomeDiscarded)
		span.SetAttributes(attribute.Bool("storefront.discarded", true))
		v.logger.Debug("taxonomy result discarded after unmount", zap.Error(err))
		return nil
	}

	if err != nil {
		v.metrics.observeFetch(OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "taxonomy fetch failed")
		if len(v.groups) == 0 {
			v.status = StatusFallback
		} else {
			v.status = StatusStale
		}
		v.logger.Warn("taxonomy fetch failed", zap.Error(err), zap.String("status", string(v.status)))
		return fmt.Errorf("navigation: load taxonomy: %w", err)
	}

	groups := taxonomy.Normalize(v.cfg, raw)
	v.groups = groups
	v.status = StatusReady
	if v.opts.holder != nil {
		v.opts.holder.Store(groups)
	}
	v.metrics.observeFetch(OutcomeSuccess)
	span.SetAttributes(attribute.Int("storefront.groups", len(groups)))
	v.logger.Debug("taxonomy loaded", zap.Int("groups", len(groups)), zap.Int("categories", len(raw)))
	return nil
}

// Unmount stops the view. Pending fetches are ignored, listeners are removed
// exactly once and the scroll lock is released. Calling it again does nothing.
func (v *View) Unmount() {
	v.mu.Lock()
	if !v.guard.Mounted() {
		v.mu.Unlock()
		return
	}
	v.guard.Unmount()
	v.machine.Close()
	if v.cancel != nil {
		v.cancel()
	}
	v.mu.Unlock()

	v.listeners.Close()
	v.logger.Debug("navigation unmounted")
}

// Mounted reports whether Unmount has not been called yet.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.guard.Mounted()
}

// Filter returns the current selection.
func (v *View) Filter() filter.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store.State()
}

// Groups returns the normalized groups without static links.
func (v *View) Groups() []taxonomy.Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]taxonomy.Group(nil), v.groups...)
}

// Menu returns the groups followed by the static links.
func (v *View) Menu() []taxonomy.Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return taxonomy.Menu(v.cfg, v.groups)
}

// Disclosure returns the menu disclosure state.
func (v *View) Disclosure() disclosure.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.machine.State()
}

// Status reports where the group list came from.
func (v *View) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Heading returns the page title for the current selection.
func (v *View) Heading() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return filter.Heading(v.store.State(), v.labeler())
}

// Snapshot copies every piece of state under one lock.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.store.State()
	return Snapshot{
		ID:         v.id,
		Filter:     st,
		Disclosure: v.machine.State(),
		Groups:     append([]taxonomy.Group(nil), v.groups...),
		Menu:       taxonomy.Menu(v.cfg, v.groups),
		Heading:    filter.Heading(st, v.labeler()),
		Status:     v.status,
		Query:      filter.ToQuery(st),
	}
}

// SetField changes one filter field and pushes the result to the address.
func (v *View) SetField(field filter.Field, value string) filter.State {
	return v.dispatch(filter.SetField(field, value))
}

// Clear resets the selection.
func (v *View) Clear() filter.State {
	return v.dispatch(filter.Clear())
}

func (v *View) dispatch(a filter.Action) filter.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.guard.Mounted() {
		return v.store.State()
	}
	prev := v.store.State()
	next, changed := v.store.Dispatch(a)
	if !changed {
		return next
	}
	v.filterChanged(prev, next)
	v.urlSync.Push(next)
	return next
}

// SelectCategory follows a menu link: the selection becomes the category
// alone, the mobile panel closes and the owning group stays open.
func (v *View) SelectCategory(slug string) filter.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.guard.Mounted() {
		return v.store.State()
	}

	next := filter.Reduce(filter.Default(), filter.SetField(filter.FieldCategory, slug))
	q := filter.ToQuery(next)
	groupLabel := ""
	if summary, group, ok := taxonomy.Find(v.groups, next.Category); ok {
		groupLabel = group.Label
		if summary.TechnicalID != "" {
			q.Set("group", summary.TechnicalID)
		}
	}

	prev := v.store.State()
	if v.store.Replace(next) {
		v.filterChanged(prev, next)
	}
	v.urlSync.PushQuery(q)
	v.machine.CategorySelected(groupLabel)
	return next
}

// ToggleGroup opens or closes a menu group.
func (v *View) ToggleGroup(label string) disclosure.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.guard.Mounted() {
		return v.machine.State()
	}
	return v.machine.ToggleGroup(label)
}

// TogglePanel opens or closes the mobile panel.
func (v *View) TogglePanel() disclosure.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.guard.Mounted() {
		return v.machine.State()
	}
	return v.machine.TogglePanel()
}

func (v *View) onLocation(q url.Values) {
	// The echo of our own push arrives while dispatch still holds the lock.
	if v.urlSync.Echo(q) {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.guard.Mounted() || !v.urlSync.Observe(q) {
		return
	}
	// Decode the address as it is now: it may have moved again since q.
	next := v.urlSync.Decode(v.validator())
	prev := v.store.State()
	if v.store.Replace(next) {
		v.filterChanged(prev, next)
	}
}

func (v *View) onViewport(compact bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.guard.Mounted() {
		return
	}
	v.machine.ViewportChanged(compact)
}

func (v *View) onClick(inside bool) {
	if inside {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.guard.Mounted() {
		return
	}
	v.machine.OutsideClick()
}

// filterChanged resets the disclosure when the category returns to "all".
func (v *View) filterChanged(prev, next filter.State) {
	if prev.Category != next.Category && filter.IsAllCategory(next.Category) {
		v.machine.Reset()
	}
}

// validator checks categories against the loaded taxonomy. Before the first
// load any category is accepted.
func (v *View) validator() filter.Validator {
	if len(v.groups) == 0 {
		return nil
	}
	groups := v.groups
	return func(category string) bool {
		_, _, ok := taxonomy.Find(groups, category)
		return ok
	}
}

func (v *View) labeler() filter.Labeler {
	groups := v.groups
	return filter.LabelerFunc(func(slug string) (string, bool) {
		summary, _, ok := taxonomy.Find(groups, slug)
		if !ok {
			return "", false
		}
		return summary.Name, true
	})
}
