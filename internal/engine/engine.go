// Package engine orchestrates the poll cycle: fetch, snapshot swap, diff,
// policy planning, dedup gating, and dispatch.
//
// Exactly one cycle runs at a time. The run loop is a single goroutine
// driven by a ticker, so a slow cycle delays the next tick instead of
// overlapping it. Within a cycle the catalog and weather fetches run
// concurrently, but the snapshot swap happens only after both resolve,
// so the detector always diffs two fully formed snapshots.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/dedupe"
	"github.com/mossvale/gardenbell/internal/detect"
	"github.com/mossvale/gardenbell/internal/dispatch"
	"github.com/mossvale/gardenbell/internal/metrics"
	"github.com/mossvale/gardenbell/internal/policy"
	"github.com/mossvale/gardenbell/internal/registry"
	"github.com/mossvale/gardenbell/internal/snapshot"
)

// Fetcher is the upstream game-state collaborator.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (catalog.Snapshot, error)
	FetchWeather(ctx context.Context) (catalog.WeatherSnapshot, error)
	FetchEvent(ctx context.Context) (*catalog.Event, error)
}

// Engine owns all relay state explicitly: snapshots, device registry,
// dedup cache. No ambient package-level state, so tests can run several
// independent engines side by side.
type Engine struct {
	fetcher    Fetcher
	store      *snapshot.Store
	registry   *registry.Store
	dedupe     *dedupe.Cache
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger

	now func() time.Time // injectable clock for tests
}

// New wires an engine from its collaborators.
func New(
	fetcher Fetcher,
	store *snapshot.Store,
	reg *registry.Store,
	cache *dedupe.Cache,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher:    fetcher,
		store:      store,
		registry:   reg,
		dedupe:     cache,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Store exposes the snapshot store for read-only HTTP views.
func (e *Engine) Store() *snapshot.Store { return e.store }

// Registry exposes the device registry for the HTTP write path.
func (e *Engine) Registry() *registry.Store { return e.registry }

// --------------------------------------------------------------------------
// Run loops
// --------------------------------------------------------------------------

// Run drives poll cycles at pollInterval and event refreshes at
// eventInterval. Blocks until ctx is cancelled. Intended to be called
// with `go`.
func (e *Engine) Run(ctx context.Context, pollInterval, eventInterval time.Duration) {
	e.logger.Info("Engine started", "poll_interval", pollInterval, "event_interval", eventInterval)

	e.refreshEvent(ctx)
	e.Cycle(ctx)

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	event := time.NewTicker(eventInterval)
	defer event.Stop()

	for {
		select {
		case <-poll.C:
			e.Cycle(ctx)
		case <-event.C:
			e.refreshEvent(ctx)
		case <-ctx.Done():
			e.logger.Info("Engine stopped")
			return
		}
	}
}

// refreshEvent updates the active timed event on its own slow cadence.
// On error the last-known event is kept.
func (e *Engine) refreshEvent(ctx context.Context) {
	ev, err := e.fetcher.FetchEvent(ctx)
	if err != nil {
		e.logger.Warn("event fetch failed, keeping last-known event", "error", err)
		return
	}
	e.store.SetEvent(ev, e.now())
	if ev != nil {
		e.logger.Info("Active event updated", "event", ev.Name, "trigger_minute", ev.TriggerMinute)
	}
}

// --------------------------------------------------------------------------
// One poll cycle
// --------------------------------------------------------------------------

// CycleResult summarizes one poll cycle for logging and debug endpoints.
type CycleResult struct {
	ItemDeltas    int
	WeatherDeltas int
	EventMatched  bool
	Planned       int
	Suppressed    int
	Sent          int
	Failed        int
	CatalogErr    error
}

// Cycle runs one full poll cycle: Idle -> SnapshotSwapped -> Diffed ->
// Planned -> Deduped -> Dispatched -> Idle. A catalog fetch failure keeps
// the last-known-good snapshot and skips item diffing; a weather fetch
// failure degrades to an empty weather snapshot.
func (e *Engine) Cycle(ctx context.Context) CycleResult {
	start := e.now()
	defer func() { metrics.CycleDuration.Observe(time.Since(start).Seconds()) }()

	// Fetch catalog and weather concurrently; swap only after both resolve.
	var (
		wg         sync.WaitGroup
		newCatalog catalog.Snapshot
		catalogErr error
		newWeather catalog.WeatherSnapshot
		weatherErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		newCatalog, catalogErr = e.fetcher.FetchCatalog(ctx)
	}()
	go func() {
		defer wg.Done()
		newWeather, weatherErr = e.fetcher.FetchWeather(ctx)
	}()
	wg.Wait()

	var res CycleResult
	var itemDeltas []detect.ItemDelta

	if catalogErr != nil {
		// Keep last-known-good current; do not advance to empty or partial.
		e.logger.Warn("catalog fetch failed, keeping last snapshot", "error", catalogErr)
		metrics.CyclesTotal.WithLabelValues("fetch_error").Inc()
		res.CatalogErr = catalogErr
	} else {
		prev, cur := e.store.SwapCatalog(newCatalog, start)
		itemDeltas = detect.Restock(prev, cur)
		metrics.CyclesTotal.WithLabelValues("ok").Inc()
	}

	if weatherErr != nil {
		e.logger.Warn("weather fetch failed, treating as no weather data", "error", weatherErr)
		newWeather = catalog.WeatherSnapshot{}
	}
	prevW, curW := e.store.SwapWeather(newWeather)
	weatherDeltas := detect.WeatherChanges(prevW, curW)

	var eventLead *detect.EventLead
	if lead, ok := detect.NextEventLead(start, e.store.Event()); ok {
		eventLead = &lead
		res.EventMatched = true
		metrics.DeltasDetected.WithLabelValues("event").Inc()
	}

	res.ItemDeltas = len(itemDeltas)
	res.WeatherDeltas = len(weatherDeltas)
	metrics.DeltasDetected.WithLabelValues("items").Add(float64(len(itemDeltas)))
	metrics.DeltasDetected.WithLabelValues("weather").Add(float64(len(weatherDeltas)))

	e.planAndDispatch(ctx, itemDeltas, weatherDeltas, eventLead, &res)

	if res.Planned > 0 || res.ItemDeltas > 0 || res.WeatherDeltas > 0 {
		e.logger.Info("Poll cycle complete",
			"item_deltas", res.ItemDeltas,
			"weather_deltas", res.WeatherDeltas,
			"event", res.EventMatched,
			"planned", res.Planned,
			"suppressed", res.Suppressed,
			"sent", res.Sent,
			"failed", res.Failed,
			"duration", time.Since(start))
	}
	return res
}

// CheckAvailability runs the on-demand availability mode: every in-stock
// item in the current snapshot is considered, no previous snapshot
// involved. The dedup cache still gates, so a manual re-check cannot
// double-alert inside the window.
func (e *Engine) CheckAvailability(ctx context.Context) CycleResult {
	cur, _ := e.store.Catalog()
	deltas := detect.Availability(cur)

	var res CycleResult
	res.ItemDeltas = len(deltas)
	e.planAndDispatch(ctx, deltas, nil, nil, &res)
	return res
}

func (e *Engine) planAndDispatch(
	ctx context.Context,
	items []detect.ItemDelta,
	weather []detect.WeatherDelta,
	eventLead *detect.EventLead,
	res *CycleResult,
) {
	intents := policy.Plan(items, weather, eventLead, e.registry)
	res.Planned = len(intents)
	for _, in := range intents {
		metrics.IntentsPlanned.WithLabelValues(string(in.Kind)).Inc()
	}

	now := e.now()
	approved := intents[:0]
	for _, in := range intents {
		if e.dedupe.ShouldSend(in.Token, in.Signature, now) {
			approved = append(approved, in)
		} else {
			res.Suppressed++
			metrics.DedupeSuppressed.Inc()
		}
	}
	if len(approved) == 0 {
		return
	}

	sum := e.dispatcher.Dispatch(ctx, approved, func(in policy.Intent) {
		e.dedupe.Record(in.Token, in.Signature, now)
	})
	res.Sent = sum.Sent
	res.Failed = sum.Failed + sum.ComposeErrors
}
