package probe

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultFingerprintTimeout bounds the whole connect/send/recv cycle.
	DefaultFingerprintTimeout = 2500 * time.Millisecond

	userAgent   = "RTSPScout/1.0"
	readBufSize = 4096
)

// Fingerprint is what one DESCRIBE round-trip tells us about a device.
// Headers is keyed by lower-cased, trimmed header name. StatusCode is the
// numeric code from the status line, 0 when it could not be parsed.
type Fingerprint struct {
	Headers    map[string]string
	StatusCode int
}

// Get returns a header value or "".
func (f Fingerprint) Get(name string) string {
	return f.Headers[strings.ToLower(name)]
}

// Empty reports whether the handshake yielded nothing usable.
func (f Fingerprint) Empty() bool {
	return len(f.Headers) == 0 && f.StatusCode == 0
}

// Fingerprinter obtains a Fingerprint for an ip:port.
type Fingerprinter interface {
	Fingerprint(ip string, port int) Fingerprint
}

// RTSPFingerprinter sends one DESCRIBE to the root path and reads a single
// buffer. It is deliberately not an RTSP client: no auth challenge handling,
// no redirects, no multi-packet reads. The point is only to harvest the
// Server and *-Authenticate headers for vendor detection.
type RTSPFingerprinter struct {
	Timeout time.Duration
}

func NewRTSPFingerprinter(timeout time.Duration) *RTSPFingerprinter {
	if timeout <= 0 {
		timeout = DefaultFingerprintTimeout
	}
	return &RTSPFingerprinter{Timeout: timeout}
}

// Fingerprint never fails: any error at any stage degrades to an empty
// Fingerprint. The connection is closed on every path.
func (f *RTSPFingerprinter) Fingerprint(ip string, port int) Fingerprint {
	fp := Fingerprint{Headers: map[string]string{}}

	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, f.Timeout)
	if err != nil {
		return fp
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(f.Timeout))

	req := fmt.Sprintf(
		"DESCRIBE rtsp://%s:%d/ RTSP/1.0\r\nCSeq: 1\r\nUser-Agent: %s\r\nAccept: application/sdp\r\n\r\n",
		ip, port, userAgent)
	if _, err := conn.Write([]byte(req)); err != nil {
		return fp
	}

	buf := make([]byte, readBufSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return fp
	}

	lines := strings.Split(string(buf[:n]), "\r\n")
	fp.StatusCode = parseStatusLine(lines[0])
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fp.Headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return fp
}

// parseStatusLine extracts the code from "RTSP/1.0 401 Unauthorized".
// Returns 0 for anything that does not look like an RTSP status line.
func parseStatusLine(line string) int {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "RTSP/") {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil || code < 100 || code > 599 {
		return 0
	}
	return code
}
