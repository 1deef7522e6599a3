// Package cameras owns the session's camera records: one row per registered
// device, created at registration, mutated only by discovery runs, never
// deleted while the process lives.
package cameras

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/majhol08/rtspscout/internal/discover"
)

type Status string

const (
	StatusNew     Status = "NEW"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

var (
	ErrNotFound = errors.New("camera not found")
	ErrInFlight = errors.New("camera already has a probe in flight")
)

// Record is the engine-facing view of one camera. A SUCCESS record always
// has a non-empty URL whose port equals Port; a FAILED record always has an
// empty URL.
type Record struct {
	ID         uuid.UUID `json:"id"`
	IP         string    `json:"ip"`
	Port       int       `json:"port"`
	User       string    `json:"user,omitempty"`
	Password   string    `json:"password,omitempty"`
	Vendor     string    `json:"vendor"`
	Path       string    `json:"path"`
	Status     Status    `json:"status"`
	LatencyMs  int64     `json:"latency_ms"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Request converts the record's current hints into a discovery request.
func (r Record) Request() discover.Request {
	return discover.Request{
		IP:       r.IP,
		Port:     r.Port,
		User:     r.User,
		Password: r.Password,
		Path:     r.Path,
	}
}

// Registry is the in-memory record store, partitioned by camera id. It also
// enforces the one-probe-in-flight-per-id discipline via Claim/Release so
// that overlapping batches cannot race on the same record.
type Registry struct {
	mu       sync.RWMutex
	order    []uuid.UUID
	records  map[uuid.UUID]*Record
	inFlight map[uuid.UUID]bool
}

func NewRegistry() *Registry {
	return &Registry{
		records:  make(map[uuid.UUID]*Record),
		inFlight: make(map[uuid.UUID]bool),
	}
}

// Identity is the caller-supplied input when registering a camera.
type Identity struct {
	IP       string
	Port     int
	User     string
	Password string
	Vendor   string
	Path     string
}

// Add registers a camera and returns its new record. Zero-valued hints get
// the usual defaults: port 554 at probe time, auto path, unknown vendor.
func (g *Registry) Add(id Identity) Record {
	rec := &Record{
		ID:        uuid.New(),
		IP:        id.IP,
		Port:      id.Port,
		User:      id.User,
		Password:  id.Password,
		Vendor:    id.Vendor,
		Path:      id.Path,
		Status:    StatusNew,
		UpdatedAt: time.Now(),
	}
	if rec.Vendor == "" {
		rec.Vendor = "unknown"
	}
	if rec.Path == "" {
		rec.Path = discover.PathAuto
	}

	g.mu.Lock()
	g.order = append(g.order, rec.ID)
	g.records[rec.ID] = rec
	g.mu.Unlock()
	return *rec
}

func (g *Registry) Get(id uuid.UUID) (Record, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// List returns records in registration order.
func (g *Registry) List() []Record {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Record, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.records[id])
	}
	return out
}

// IDs returns all record ids in registration order.
func (g *Registry) IDs() []uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]uuid.UUID, len(g.order))
	copy(out, g.order)
	return out
}

// SetPath overrides the path setting (empty resets to auto) and moves the
// record back to NEW, clearing stale results.
func (g *Registry) SetPath(id uuid.UUID, path string) error {
	if path == "" {
		path = discover.PathAuto
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Path = path
	rec.Status = StatusNew
	rec.URL = ""
	rec.LatencyMs = 0
	rec.UpdatedAt = time.Now()
	return nil
}

// Claim marks a record as having a probe in flight. A second claim for the
// same id fails until Release.
func (g *Registry) Claim(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.records[id]; !ok {
		return ErrNotFound
	}
	if g.inFlight[id] {
		return ErrInFlight
	}
	g.inFlight[id] = true
	return nil
}

func (g *Registry) Release(id uuid.UUID) {
	g.mu.Lock()
	delete(g.inFlight, id)
	g.mu.Unlock()
}

// Apply overwrites a record in place with a discovery outcome and returns
// the updated copy.
func (g *Registry) Apply(id uuid.UUID, out discover.Outcome) (Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}

	rec.Vendor = out.Vendor
	rec.LatencyMs = out.ElapsedMs
	rec.URL = out.URL
	rec.StatusCode = out.StatusCode
	if out.Path != "" {
		rec.Path = out.Path
	}
	if out.Status == discover.StatusSuccess {
		rec.Status = StatusSuccess
		rec.User = out.User
		rec.Password = out.Password
		rec.Port = out.Port
	} else {
		rec.Status = StatusFailed
		rec.URL = ""
	}
	rec.UpdatedAt = time.Now()
	return *rec, nil
}
