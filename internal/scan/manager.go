// Package scan fans one discovery run per camera out over a bounded worker
// pool and funnels every result through a single collector, which is the
// only code that touches the registry and the cache during a batch.
package scan

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/majhol08/rtspscout/internal/cache"
	"github.com/majhol08/rtspscout/internal/cameras"
	"github.com/majhol08/rtspscout/internal/discover"
	"github.com/majhol08/rtspscout/internal/events"
	"github.com/majhol08/rtspscout/internal/metrics"
)

const (
	DefaultWorkers = 8
	MaxWorkers     = 32
)

// Engine is the per-camera discovery algorithm.
type Engine interface {
	Discover(ctx context.Context, req discover.Request) discover.Outcome
}

// Publisher receives each applied result, best-effort.
type Publisher interface {
	Publish(evt events.ResultEvent) error
}

// Summary is the aggregate outcome of one batch.
type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"` // ids already in flight or unknown
}

// Manager runs batches. Safe for concurrent batches over disjoint ids; the
// registry's claim discipline rejects overlap on the same id.
type Manager struct {
	engine    Engine
	registry  *cameras.Registry
	cache     *cache.Cache
	metrics   *metrics.Collector
	publisher Publisher

	// OnResult is invoked from the collector goroutine for every applied
	// record (websocket broadcast hooks in here). Must not block for long.
	OnResult func(cameras.Record)
}

func NewManager(engine Engine, registry *cameras.Registry, c *cache.Cache, m *metrics.Collector, pub Publisher) *Manager {
	return &Manager{
		engine:    engine,
		registry:  registry,
		cache:     c,
		metrics:   m,
		publisher: pub,
	}
}

// WithEngine returns a copy of the manager driving a different engine but
// sharing the registry, cache, metrics, publisher and result hook. Used for
// per-batch option overrides.
func (m *Manager) WithEngine(engine Engine) *Manager {
	m2 := *m
	m2.engine = engine
	return &m2
}

type job struct {
	id  uuid.UUID
	req discover.Request
}

type result struct {
	id      uuid.UUID
	outcome discover.Outcome
}

// Run probes the given cameras with the given worker count (0 means the
// default, values are clamped to [1, MaxWorkers]) and blocks until every
// claimed camera has completed. Cancelling ctx stops submission of new
// work; in-flight probes run to their own timeouts.
func (m *Manager) Run(ctx context.Context, ids []uuid.UUID, workers int) Summary {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	var summary Summary

	// Claim up front so an overlapping batch sees the conflict before any
	// network traffic happens.
	claimed := make([]job, 0, len(ids))
	for _, id := range ids {
		rec, ok := m.registry.Get(id)
		if !ok {
			summary.Skipped++
			continue
		}
		if err := m.registry.Claim(id); err != nil {
			log.Printf("[scan] skipping %s: %v", id, err)
			summary.Skipped++
			continue
		}
		claimed = append(claimed, job{id: id, req: m.seed(rec.Request())})
	}
	if len(claimed) == 0 {
		return summary
	}

	jobs := make(chan job)
	results := make(chan result, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result{id: j.id, outcome: m.discoverSafe(ctx, j.req)}
			}
		}()
	}

	// Producer: stops on cancellation, leaving unsubmitted claims to be
	// released by the collector accounting below.
	submitted := 0
	go func() {
		defer close(jobs)
		for _, j := range claimed {
			select {
			case jobs <- j:
				submitted++
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collector: the single writer for registry and cache during this
	// batch. Losing an update here would need two cameras with the same
	// id, which the claim step has already excluded.
	pending := len(claimed)
	m.metrics.SetQueueDepth(pending)
	for res := range results {
		pending--
		m.metrics.SetQueueDepth(pending)
		m.apply(res, &summary)
	}

	// Claims for jobs never submitted (cancelled batch) are released
	// without touching the records.
	for _, j := range claimed {
		m.registry.Release(j.id)
	}
	summary.Skipped += len(claimed) - submitted
	m.metrics.SetQueueDepth(0)

	if m.cache != nil {
		m.cache.Flush(ctx)
		m.metrics.BatchDone(m.cache.Len())
	}

	log.Printf("[scan] batch done: %d succeeded, %d failed, %d skipped",
		summary.Succeeded, summary.Failed, summary.Skipped)
	return summary
}

// seed fills hints the caller left blank from the last known-good config
// for this IP. Explicit hints always win over cached ones.
func (m *Manager) seed(req discover.Request) discover.Request {
	if m.cache == nil {
		return req
	}
	entry, ok := m.cache.Get(req.IP)
	if !ok {
		return req
	}
	if req.Port == 0 {
		req.Port = entry.Port
	}
	if req.User == "" && req.Password == "" {
		req.User = entry.User
		req.Password = entry.Password
	}
	if req.Path == discover.PathAuto && entry.Path != "" {
		req.Path = entry.Path
	}
	return req
}

// discoverSafe guarantees one camera's misbehavior cannot abort the batch.
func (m *Manager) discoverSafe(ctx context.Context, req discover.Request) (out discover.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[scan] probe panic for %s: %v", req.IP, r)
			out = discover.Outcome{
				Status:   discover.StatusFailed,
				Vendor:   "unknown",
				Port:     req.Port,
				User:     req.User,
				Password: req.Password,
			}
		}
	}()
	return m.engine.Discover(ctx, req)
}

func (m *Manager) apply(res result, summary *Summary) {
	rec, err := m.registry.Apply(res.id, res.outcome)
	if err != nil {
		log.Printf("[scan] apply %s: %v", res.id, err)
		return
	}

	status := string(res.outcome.Status)
	m.metrics.ObserveProbe(status, float64(res.outcome.ElapsedMs)/1000.0)

	if res.outcome.Status == discover.StatusSuccess {
		summary.Succeeded++
		if m.cache != nil {
			m.cache.Put(rec.IP, cache.Entry{
				Vendor:   rec.Vendor,
				Path:     rec.Path,
				User:     rec.User,
				Password: rec.Password,
				Port:     rec.Port,
			})
		}
	} else {
		summary.Failed++
	}

	if m.publisher != nil {
		evt := events.ResultEvent{
			CameraID:  rec.ID.String(),
			IP:        rec.IP,
			Status:    status,
			Vendor:    rec.Vendor,
			URL:       rec.URL,
			Path:      rec.Path,
			Port:      rec.Port,
			LatencyMs: rec.LatencyMs,
			At:        time.Now().UTC(),
		}
		if err := m.publisher.Publish(evt); err != nil {
			log.Printf("[scan] publish %s: %v", rec.IP, err)
		}
	}

	if m.OnResult != nil {
		m.OnResult(rec)
	}
}
