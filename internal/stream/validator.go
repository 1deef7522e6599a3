// Package stream validates candidate RTSP URLs by actually opening them.
//
// Validation is the ground truth of discovery: connectivity and fingerprint
// checks only narrow the search space. A URL counts as working when a full
// session can be negotiated and at least one RTP packet arrives.
//
// Preview collaborators open their own sessions against a validated URL;
// the only guarantee made here is that the URL was openable with readable
// frames at validation time. Liveness afterwards is the collaborator's
// problem (bounded consecutive-failure counting on its reads).
package stream

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/bluenviron/gortsplib/v4"
	"github.com/bluenviron/gortsplib/v4/pkg/base"
	"github.com/bluenviron/gortsplib/v4/pkg/description"
	"github.com/bluenviron/gortsplib/v4/pkg/format"
	"github.com/pion/rtp"
)

const (
	// DefaultWarmUp compensates for backends that report "open" before the
	// session is actually delivering media.
	DefaultWarmUp = 220 * time.Millisecond

	// DefaultTimeout bounds each protocol phase and the first-packet wait.
	// Short by design: a stuck validation must not starve the worker pool.
	DefaultTimeout = 5 * time.Second
)

// Validator opens candidate URLs over TCP and waits for a first frame.
// TCP interleaving avoids the firewalled-UDP false negatives that plague
// camera LANs.
type Validator struct {
	WarmUp  time.Duration
	Timeout time.Duration
}

func NewValidator(warmUp, timeout time.Duration) *Validator {
	if warmUp <= 0 {
		warmUp = DefaultWarmUp
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Validator{WarmUp: warmUp, Timeout: timeout}
}

// Validate reports whether url yields at least one frame. All failure modes
// collapse to false; the client is closed on every path.
func (v *Validator) Validate(ctx context.Context, url string) bool {
	ok, _ := v.Check(ctx, url)
	return ok
}

// isDialError distinguishes transport-level failures (refused, unreachable,
// dial timeout) from protocol-level DESCRIBE failures.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// Check is Validate with the failure reason, for diagnostics and logs.
func (v *Validator) Check(ctx context.Context, url string) (bool, string) {
	u, err := base.ParseURL(url)
	if err != nil {
		return false, "bad_url"
	}

	transport := gortsplib.TransportTCP
	client := &gortsplib.Client{
		Transport:    &transport,
		ReadTimeout:  v.Timeout,
		WriteTimeout: v.Timeout,
	}

	if err := client.Start(u.Scheme, u.Host); err != nil {
		return false, "connect_failed"
	}
	defer client.Close()

	// The client dials lazily, so a dead host surfaces here rather than
	// in Start.
	session, _, err := client.Describe(u)
	if err != nil {
		if isDialError(err) {
			return false, "connect_failed"
		}
		return false, "describe_failed"
	}

	if err := client.SetupAll(session.BaseURL, session.Medias); err != nil {
		return false, "setup_failed"
	}

	frames := make(chan struct{}, 1)
	client.OnPacketRTPAny(func(_ *description.Media, _ format.Format, _ *rtp.Packet) {
		select {
		case frames <- struct{}{}:
		default:
		}
	})

	if _, err := client.Play(nil); err != nil {
		return false, "play_failed"
	}

	// Warm-up: let negotiation settle, then drain anything that arrived
	// during the window so the wait below observes a fresh packet or a
	// buffered one, either proves the stream is live.
	select {
	case <-time.After(v.WarmUp):
	case <-ctx.Done():
		return false, "cancelled"
	}

	select {
	case <-frames:
		return true, ""
	case <-time.After(v.Timeout):
		return false, "no_frames"
	case <-ctx.Done():
		return false, "cancelled"
	}
}
