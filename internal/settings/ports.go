package settings

import "github.com/wlan-control/wland/internal/overlay"

// Source supplies device overlay values to the store.
//
// Bool is the fallible construction-time lookup; its error aborts store
// construction. IntOrDefault and BoolOrDefault always resolve, falling back
// to the source's registered default for the key, and are consulted on
// every call for the dynamically resolved settings.
type Source interface {
	Bool(key string) (bool, error)
	IntOrDefault(key string) int
	BoolOrDefault(key string) bool
}

// Compile-time assertion that the device overlay satisfies Source.
var _ Source = (*overlay.Overlay)(nil)
