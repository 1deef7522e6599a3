package probe

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRTSP listens on loopback and answers every connection with the given
// raw payload.
func fakeRTSP(t *testing.T, payload string) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 4096)
				c.SetReadDeadline(time.Now().Add(time.Second))
				c.Read(buf)
				c.Write([]byte(payload))
			}(conn)
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestTCPPinger(t *testing.T) {
	ip, port := fakeRTSP(t, "")
	p := NewTCPPinger(500 * time.Millisecond)

	assert.True(t, p.Ping(ip, port))
	assert.False(t, p.Ping(ip, 1)) // nothing listens there
	assert.False(t, p.Ping("not-an-address", 554))
}

func TestFingerprint_ParsesHeadersAndStatus(t *testing.T) {
	ip, port := fakeRTSP(t,
		"RTSP/1.0 401 Unauthorized\r\n"+
			"CSeq: 1\r\n"+
			"Server: HIKVISION DS-2CD2043\r\n"+
			"WWW-Authenticate: Digest realm=\"cam\", nonce=\"abc\"\r\n"+
			"\r\n"+
			"Garbage: after blank line\r\n")

	fp := NewRTSPFingerprinter(time.Second).Fingerprint(ip, port)

	assert.Equal(t, 401, fp.StatusCode)
	assert.Equal(t, "HIKVISION DS-2CD2043", fp.Get("Server"))
	assert.Equal(t, "Digest realm=\"cam\", nonce=\"abc\"", fp.Get("www-authenticate"))
	// Parsing stops at the first blank line.
	assert.Empty(t, fp.Get("garbage"))
	assert.False(t, fp.Empty())
}

func TestFingerprint_DeadEndpointIsEmptyNotError(t *testing.T) {
	fp := NewRTSPFingerprinter(200*time.Millisecond).Fingerprint("127.0.0.1", 1)
	assert.True(t, fp.Empty())
	assert.NotNil(t, fp.Headers)
}

func TestFingerprint_MalformedStatusLine(t *testing.T) {
	ip, port := fakeRTSP(t, "totally not rtsp\r\nServer: something\r\n\r\n")
	fp := NewRTSPFingerprinter(time.Second).Fingerprint(ip, port)

	assert.Equal(t, 0, fp.StatusCode)
	assert.Equal(t, "something", fp.Get("server"))
}

func TestParseStatusLine(t *testing.T) {
	assert.Equal(t, 200, parseStatusLine("RTSP/1.0 200 OK"))
	assert.Equal(t, 451, parseStatusLine("RTSP/1.0 451 Parameter Not Understood"))
	assert.Equal(t, 0, parseStatusLine("HTTP/1.1 200 OK"))
	assert.Equal(t, 0, parseStatusLine("RTSP/1.0 nine"))
	assert.Equal(t, 0, parseStatusLine(""))
	assert.Equal(t, 0, parseStatusLine("RTSP/1.0 9999 weird"))
}

type countingFP struct {
	calls int
	fp    Fingerprint
}

func (c *countingFP) Fingerprint(string, int) Fingerprint {
	c.calls++
	return c.fp
}

func TestMemoFingerprinter(t *testing.T) {
	inner := &countingFP{fp: Fingerprint{Headers: map[string]string{"server": "Axis"}}}
	memo := NewMemoFingerprinter(inner, 16, time.Minute)

	a := memo.Fingerprint("10.0.0.5", 554)
	b := memo.Fingerprint("10.0.0.5", 554)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, inner.calls)

	memo.Fingerprint("10.0.0.5", 8554)
	assert.Equal(t, 2, inner.calls)
}

func TestMemoFingerprinter_TTLExpiry(t *testing.T) {
	inner := &countingFP{}
	memo := NewMemoFingerprinter(inner, 16, time.Millisecond)

	memo.Fingerprint("10.0.0.5", 554)
	time.Sleep(5 * time.Millisecond)
	memo.Fingerprint("10.0.0.5", 554)
	assert.Equal(t, 2, inner.calls)
}

func TestMemoFingerprinter_NonPositiveSizeGetsDefault(t *testing.T) {
	inner := &countingFP{}
	for _, size := range []int{0, -1} {
		memo := NewMemoFingerprinter(inner, size, time.Minute)
		memo.Fingerprint("10.0.0.5", 554)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestHintFor(t *testing.T) {
	assert.Contains(t, HintFor(401), "username/password")
	assert.Contains(t, HintFor(404), "path")
	assert.NotEmpty(t, HintFor(451))
	assert.NotEmpty(t, HintFor(500))
	assert.Empty(t, HintFor(0))
	assert.Empty(t, HintFor(418))
}
