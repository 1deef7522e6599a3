package catalog

// Credential is one default username/password pair shipped with a vendor
// profile. Passwords are frequently empty on factory firmware.
type Credential struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Profile is the static knowledge we carry about one camera vendor: the
// substrings that identify it in RTSP response headers, and the stream
// paths, ports and factory credentials worth trying against it.
type Profile struct {
	ID       string       `yaml:"id"`
	Match    []string     `yaml:"match"`
	Paths    []string     `yaml:"paths"`
	Ports    []int        `yaml:"ports"`
	Defaults []Credential `yaml:"defaults"`
}

// GenericID is the fallback profile. It has no match tokens; its ports and
// paths are appended to every candidate space as a last resort.
const GenericID = "generic"

// Catalog is an ordered, read-only set of vendor profiles. Iteration order
// matters: several vendors share loose tokens (e.g. dahua's "general"), so
// detection must walk profiles in insertion order and take the first hit.
type Catalog struct {
	order    []string
	profiles map[string]Profile
}

// New builds a catalog from profiles in the given order. Later duplicates
// replace earlier ones in place without changing their position.
func New(profiles ...Profile) *Catalog {
	c := &Catalog{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		c.put(p)
	}
	return c
}

func (c *Catalog) put(p Profile) {
	if _, ok := c.profiles[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.profiles[p.ID] = p
}

// Get returns the profile for id, falling back to the generic profile when
// the id is unknown.
func (c *Catalog) Get(id string) Profile {
	if p, ok := c.profiles[id]; ok {
		return p
	}
	return c.profiles[GenericID]
}

// Generic returns the fallback profile.
func (c *Catalog) Generic() Profile {
	return c.profiles[GenericID]
}

// IDs returns vendor ids in insertion order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Each walks profiles in insertion order until fn returns false.
func (c *Catalog) Each(fn func(Profile) bool) {
	for _, id := range c.order {
		if !fn(c.profiles[id]) {
			return
		}
	}
}

// Len reports the number of profiles.
func (c *Catalog) Len() int {
	return len(c.order)
}
