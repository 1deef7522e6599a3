package probe

import (
	"net"
	"strconv"
	"time"
)

// DefaultPingTimeout keeps a full batch bounded even when most ports are
// filtered. One short attempt, no retries; a transient false negative is
// cheaper than a stalled worker.
const DefaultPingTimeout = 1200 * time.Millisecond

// Pinger reports raw TCP reachability.
type Pinger interface {
	Ping(ip string, port int) bool
}

// TCPPinger is the production Pinger.
type TCPPinger struct {
	Timeout time.Duration
}

func NewTCPPinger(timeout time.Duration) *TCPPinger {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	return &TCPPinger{Timeout: timeout}
}

// Ping dials ip:port. Every failure mode (refused, timeout, unreachable,
// bad address) collapses to false; callers only care whether a URL attempt
// is worth making.
func (p *TCPPinger) Ping(ip string, port int) bool {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, p.Timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
