package discover

import (
	"context"
	"time"

	"github.com/majhol08/rtspscout/internal/catalog"
	"github.com/majhol08/rtspscout/internal/probe"
)

const defaultRTSPPort = 554

// Validator confirms a candidate URL actually yields a frame. Cheaper
// checks only narrow the search space; this is the ground truth.
type Validator interface {
	Validate(ctx context.Context, url string) bool
}

// Options are the run-time knobs for one engine instance.
type Options struct {
	// AllowDefaultCredentials enables trying vendor factory credentials
	// after the hinted ones fail. Off by default: guessing credentials can
	// trip lockout policies on hardened devices.
	AllowDefaultCredentials bool
	// MaxDefaultCredentials caps how many factory pairs are tried per
	// vendor. The bound is configurable rather than hardcoded; 3 is the
	// shipped default.
	MaxDefaultCredentials int
}

func (o Options) credentialCap() int {
	if o.MaxDefaultCredentials <= 0 {
		return 3
	}
	return o.MaxDefaultCredentials
}

// Engine runs the per-camera discovery algorithm. All collaborators are
// injected; substitute catalogs and stub probes keep it testable offline.
type Engine struct {
	pinger        probe.Pinger
	fingerprinter probe.Fingerprinter
	validator     Validator
	catalogs      catalog.Source
	opts          Options
}

func NewEngine(pinger probe.Pinger, fp probe.Fingerprinter, v Validator, src catalog.Source, opts Options) *Engine {
	return &Engine{
		pinger:        pinger,
		fingerprinter: fp,
		validator:     v,
		catalogs:      src,
		opts:          opts,
	}
}

// Options returns the engine's current options.
func (e *Engine) Options() Options { return e.opts }

// WithOptions returns a copy of the engine using opts, sharing every
// collaborator. Used for per-batch option overrides.
func (e *Engine) WithOptions(opts Options) *Engine {
	e2 := *e
	e2.opts = opts
	return &e2
}

// Discover searches the candidate space for req and returns the first
// working combination, or a FAILED outcome once everything is exhausted.
//
// Ordering is deliberate: the hinted port first, then vendor ports, then
// generic ports; per port, hinted credentials before factory defaults.
// Early exit on the first validated URL keeps load on the device minimal,
// which also means two runs may legitimately report different working
// paths.
func (e *Engine) Discover(ctx context.Context, req Request) Outcome {
	start := time.Now()

	basePort := req.Port
	if basePort == 0 {
		basePort = defaultRTSPPort
	}

	cat := e.catalogs.Current()

	// One fingerprint, against the hinted port only. Probing every
	// candidate port for headers would double the handshake count for a
	// marginal detection gain.
	fp := e.fingerprinter.Fingerprint(req.IP, basePort)
	vendor := DetectVendor(cat, fp)
	prof := cat.Get(vendor)
	generic := cat.Generic()

	ports := candidatePorts(basePort, prof.Ports, generic.Ports)

	var paths []string
	if req.Path != "" && req.Path != PathAuto {
		paths = []string{req.Path}
	} else if len(prof.Paths) > 0 {
		paths = prof.Paths
	} else {
		paths = generic.Paths
	}

	for _, port := range ports {
		if ctx.Err() != nil {
			break
		}
		// Unreachable port: skip wholesale. This is the dominant
		// cost-saver; no URL attempts against a closed port.
		if !e.pinger.Ping(req.IP, port) {
			continue
		}

		if out, ok := e.tryPaths(ctx, req.IP, port, req.User, req.Password, paths, vendor, fp, start); ok {
			return out
		}

		if e.opts.AllowDefaultCredentials {
			defaults := prof.Defaults
			if limit := e.opts.credentialCap(); len(defaults) > limit {
				defaults = defaults[:limit]
			}
			for _, cred := range defaults {
				if out, ok := e.tryPaths(ctx, req.IP, port, cred.User, cred.Password, paths, vendor, fp, start); ok {
					return out
				}
			}
		}
	}

	firstPath := ""
	if len(paths) > 0 {
		firstPath = paths[0]
	}
	return Outcome{
		Status:     StatusFailed,
		Vendor:     vendor,
		ElapsedMs:  time.Since(start).Milliseconds(),
		Path:       firstPath,
		User:       req.User,
		Password:   req.Password,
		Port:       basePort,
		StatusCode: fp.StatusCode,
	}
}

func (e *Engine) tryPaths(ctx context.Context, ip string, port int, user, password string, paths []string, vendor string, fp probe.Fingerprint, start time.Time) (Outcome, bool) {
	urls := BuildURLs(ip, port, user, password, paths)
	for i, url := range urls {
		if e.validator.Validate(ctx, url) {
			return Outcome{
				Status:     StatusSuccess,
				Vendor:     vendor,
				URL:        url,
				ElapsedMs:  time.Since(start).Milliseconds(),
				Path:       paths[i],
				User:       user,
				Password:   password,
				Port:       port,
				StatusCode: fp.StatusCode,
			}, true
		}
	}
	return Outcome{}, false
}

// candidatePorts merges hint, vendor and generic ports preserving first
// occurrence order.
func candidatePorts(base int, vendor, generic []int) []int {
	seen := map[int]bool{base: true}
	out := []int{base}
	for _, group := range [][]int{vendor, generic} {
		for _, p := range group {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
