package probe

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoFingerprinter caches fingerprints per ip:port for a short TTL so that
// re-probing a batch does not re-DESCRIBE devices we just talked to. Entries
// are keyed by endpoint; empty fingerprints are cached too, since a dead
// handshake is just as informative for the TTL window.
type MemoFingerprinter struct {
	next  Fingerprinter
	cache *lru.Cache[string, memoEntry]
	ttl   time.Duration
}

type memoEntry struct {
	fp      Fingerprint
	addedAt time.Time
}

// DefaultMemoKeys bounds the memo when the caller passes a non-positive
// size; lru.New rejects sizes below 1.
const DefaultMemoKeys = 1024

func NewMemoFingerprinter(next Fingerprinter, maxKeys int, ttl time.Duration) *MemoFingerprinter {
	if maxKeys <= 0 {
		maxKeys = DefaultMemoKeys
	}
	c, _ := lru.New[string, memoEntry](maxKeys)
	return &MemoFingerprinter{next: next, cache: c, ttl: ttl}
}

func (m *MemoFingerprinter) Fingerprint(ip string, port int) Fingerprint {
	key := fmt.Sprintf("%s:%d", ip, port)
	if e, ok := m.cache.Get(key); ok && time.Since(e.addedAt) < m.ttl {
		return e.fp
	}
	fp := m.next.Fingerprint(ip, port)
	m.cache.Add(key, memoEntry{fp: fp, addedAt: time.Now()})
	return fp
}
