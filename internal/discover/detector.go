package discover

import (
	"strings"

	"github.com/majhol08/rtspscout/internal/catalog"
	"github.com/majhol08/rtspscout/internal/probe"
)

// Headers that carry vendor identity. Server is the obvious one; cameras
// that refuse the unauthenticated DESCRIBE still leak their make in the
// auth challenge realm.
var identityHeaders = []string{"server", "www-authenticate", "proxy-authenticate"}

// DetectVendor matches a fingerprint against the catalog. First profile in
// catalog order with any token occurring as a substring wins; this matters
// because tokens overlap (dahua claims "general"). No match, or an empty
// fingerprint, resolves to the generic profile.
func DetectVendor(c *catalog.Catalog, fp probe.Fingerprint) string {
	var b strings.Builder
	for _, h := range identityHeaders {
		b.WriteString(fp.Get(h))
		b.WriteByte(' ')
	}
	text := strings.ToLower(b.String())

	vendor := catalog.GenericID
	c.Each(func(p catalog.Profile) bool {
		for _, token := range p.Match {
			if token != "" && strings.Contains(text, strings.ToLower(token)) {
				vendor = p.ID
				return false
			}
		}
		return true
	})
	return vendor
}
