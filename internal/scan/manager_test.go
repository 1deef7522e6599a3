package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majhol08/rtspscout/internal/cache"
	"github.com/majhol08/rtspscout/internal/cameras"
	"github.com/majhol08/rtspscout/internal/discover"
	"github.com/majhol08/rtspscout/internal/events"
)

// fakeEngine records every request it sees and answers from fn.
type fakeEngine struct {
	mu   sync.Mutex
	reqs []discover.Request
	fn   func(req discover.Request) discover.Outcome
}

func (f *fakeEngine) Discover(_ context.Context, req discover.Request) discover.Outcome {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.fn(req)
}

func (f *fakeEngine) calls() []discover.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]discover.Request, len(f.reqs))
	copy(out, f.reqs)
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.ResultEvent
}

func (p *fakePublisher) Publish(evt events.ResultEvent) error {
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
	return nil
}

func successFor(req discover.Request) discover.Outcome {
	return discover.Outcome{
		Status:    discover.StatusSuccess,
		Vendor:    "hikvision",
		URL:       fmt.Sprintf("rtsp://%s:554/Streaming/Channels/101", req.IP),
		Path:      "Streaming/Channels/101",
		Port:      554,
		ElapsedMs: 40,
	}
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	return cache.New(context.Background(), store)
}

func TestRunProbesEveryCameraExactlyOnce(t *testing.T) {
	registry := cameras.NewRegistry()
	for i := 0; i < 50; i++ {
		registry.Add(cameras.Identity{IP: fmt.Sprintf("10.0.0.%d", i+1)})
	}

	engine := &fakeEngine{fn: func(req discover.Request) discover.Outcome {
		if req.IP == "10.0.0.7" {
			return discover.Outcome{Status: discover.StatusFailed, Vendor: "generic"}
		}
		return successFor(req)
	}}

	mgr := NewManager(engine, registry, newTestCache(t), nil, nil)
	summary := mgr.Run(context.Background(), registry.IDs(), 4)

	assert.Equal(t, 49, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)

	seen := map[string]int{}
	for _, req := range engine.calls() {
		seen[req.IP]++
	}
	require.Len(t, seen, 50)
	for ip, n := range seen {
		assert.Equal(t, 1, n, "camera %s probed %d times", ip, n)
	}

	for _, rec := range registry.List() {
		if rec.IP == "10.0.0.7" {
			assert.Equal(t, cameras.StatusFailed, rec.Status)
			assert.Empty(t, rec.URL)
		} else {
			assert.Equal(t, cameras.StatusSuccess, rec.Status)
			assert.NotEmpty(t, rec.URL)
		}
	}
}

func TestRunSkipsInFlightAndUnknownIDs(t *testing.T) {
	registry := cameras.NewRegistry()
	a := registry.Add(cameras.Identity{IP: "10.0.0.1"})
	b := registry.Add(cameras.Identity{IP: "10.0.0.2"})
	require.NoError(t, registry.Claim(b.ID))

	engine := &fakeEngine{fn: successFor}
	mgr := NewManager(engine, registry, newTestCache(t), nil, nil)

	summary := mgr.Run(context.Background(), append(registry.IDs(), uuid.New()), 2)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, engine.calls(), 1)
	assert.Equal(t, a.IP, engine.calls()[0].IP)

	// The skipped claim belongs to the other batch and stays held.
	assert.ErrorIs(t, registry.Claim(b.ID), cameras.ErrInFlight)
}

func TestRunSeedsHintsFromCache(t *testing.T) {
	registry := cameras.NewRegistry()
	cam := registry.Add(cameras.Identity{IP: "10.0.0.9"})

	c := newTestCache(t)
	c.Put("10.0.0.9", cache.Entry{
		Vendor:   "dahua",
		Path:     "cam/realmonitor?channel=1&subtype=0",
		User:     "admin",
		Password: "secret",
		Port:     10554,
	})

	engine := &fakeEngine{fn: successFor}
	mgr := NewManager(engine, registry, c, nil, nil)
	mgr.Run(context.Background(), []uuid.UUID{cam.ID}, 1)

	require.Len(t, engine.calls(), 1)
	req := engine.calls()[0]
	assert.Equal(t, 10554, req.Port)
	assert.Equal(t, "admin", req.User)
	assert.Equal(t, "secret", req.Password)
	assert.Equal(t, "cam/realmonitor?channel=1&subtype=0", req.Path)
}

func TestRunExplicitHintsBeatCache(t *testing.T) {
	registry := cameras.NewRegistry()
	cam := registry.Add(cameras.Identity{
		IP:       "10.0.0.9",
		Port:     8554,
		User:     "operator",
		Password: "pw",
		Path:     "live/main",
	})

	c := newTestCache(t)
	c.Put("10.0.0.9", cache.Entry{User: "admin", Password: "secret", Port: 10554, Path: "other"})

	engine := &fakeEngine{fn: successFor}
	mgr := NewManager(engine, registry, c, nil, nil)
	mgr.Run(context.Background(), []uuid.UUID{cam.ID}, 1)

	require.Len(t, engine.calls(), 1)
	req := engine.calls()[0]
	assert.Equal(t, 8554, req.Port)
	assert.Equal(t, "operator", req.User)
	assert.Equal(t, "live/main", req.Path)
}

func TestRunUpsertsCacheOnSuccess(t *testing.T) {
	registry := cameras.NewRegistry()
	cam := registry.Add(cameras.Identity{IP: "10.0.0.3"})

	c := newTestCache(t)
	engine := &fakeEngine{fn: successFor}
	mgr := NewManager(engine, registry, c, nil, nil)
	mgr.Run(context.Background(), []uuid.UUID{cam.ID}, 1)

	entry, ok := c.Get("10.0.0.3")
	require.True(t, ok)
	assert.Equal(t, "hikvision", entry.Vendor)
	assert.Equal(t, "Streaming/Channels/101", entry.Path)
	assert.Equal(t, 554, entry.Port)
}

func TestRunSurvivesEnginePanic(t *testing.T) {
	registry := cameras.NewRegistry()
	bad := registry.Add(cameras.Identity{IP: "10.0.0.66"})
	good := registry.Add(cameras.Identity{IP: "10.0.0.1"})

	engine := &fakeEngine{fn: func(req discover.Request) discover.Outcome {
		if req.IP == "10.0.0.66" {
			panic("malformed response")
		}
		return successFor(req)
	}}

	mgr := NewManager(engine, registry, newTestCache(t), nil, nil)
	summary := mgr.Run(context.Background(), registry.IDs(), 2)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	rec, _ := registry.Get(bad.ID)
	assert.Equal(t, cameras.StatusFailed, rec.Status)
	rec, _ = registry.Get(good.ID)
	assert.Equal(t, cameras.StatusSuccess, rec.Status)
}

func TestRunCancelledContextReleasesClaims(t *testing.T) {
	registry := cameras.NewRegistry()
	for i := 0; i < 10; i++ {
		registry.Add(cameras.Identity{IP: fmt.Sprintf("10.0.0.%d", i+1)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &fakeEngine{fn: successFor}
	mgr := NewManager(engine, registry, newTestCache(t), nil, nil)
	summary := mgr.Run(ctx, registry.IDs(), 2)

	assert.Equal(t, 10, summary.Succeeded+summary.Failed+summary.Skipped)

	// Every claim is released, so a fresh batch can run.
	summary = mgr.Run(context.Background(), registry.IDs(), 2)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 10, summary.Succeeded)
}

func TestRunNotifiesPublisherAndHook(t *testing.T) {
	registry := cameras.NewRegistry()
	cam := registry.Add(cameras.Identity{IP: "10.0.0.4"})

	pub := &fakePublisher{}
	var hooked []cameras.Record
	engine := &fakeEngine{fn: successFor}
	mgr := NewManager(engine, registry, newTestCache(t), nil, pub)
	mgr.OnResult = func(rec cameras.Record) { hooked = append(hooked, rec) }

	mgr.Run(context.Background(), []uuid.UUID{cam.ID}, 1)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "10.0.0.4", pub.events[0].IP)
	assert.Equal(t, "SUCCESS", pub.events[0].Status)
	assert.Equal(t, cam.ID.String(), pub.events[0].CameraID)

	require.Len(t, hooked, 1)
	assert.Equal(t, cameras.StatusSuccess, hooked[0].Status)
}
