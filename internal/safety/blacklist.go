package safety

// Blacklist is a static set of known-scammer creator wallets.
// Read-only after construction.
type Blacklist struct {
	addrs map[string]struct{}
}

// NewBlacklist creates a Blacklist from creator addresses.
func NewBlacklist(addrs ...string) *Blacklist {
	m := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		if a != "" {
			m[a] = struct{}{}
		}
	}
	return &Blacklist{addrs: m}
}

// Contains reports whether the creator is a known scammer.
func (b *Blacklist) Contains(creator string) bool {
	if b == nil {
		return false
	}
	_, ok := b.addrs[creator]
	return ok
}

// Len reports the number of blacklisted addresses.
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.addrs)
}
