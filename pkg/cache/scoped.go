package cache

// ScopedKeyer wraps a Keyer with a prefix so several boards or tenants can
// share one backend without colliding.
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "pinboard:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DimensionsKey generates a prefixed key for image dimensions.
func (k *ScopedKeyer) DimensionsKey(contentHash string) string {
	return k.prefix + k.inner.DimensionsKey(contentHash)
}
