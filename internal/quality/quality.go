// ABOUTME: Quality tier classification for uploaded source images
// ABOUTME: Pure function of file size; no I/O and no side effects

// Package quality grades an uploaded source file into a coarse quality tier
// used to parameterize generation requests.
package quality

import "fmt"

// Tier is the coarse quality grade of a source image.
type Tier string

const (
	Standard Tier = "standard"
	UHQ      Tier = "uhq"
)

// UHQThreshold is the smallest file size, in bytes, graded as UHQ.
const UHQThreshold int64 = 2 * 1024 * 1024

// Classify grades a source file by size.
func Classify(sizeBytes int64) Tier {
	if sizeBytes >= UHQThreshold {
		return UHQ
	}
	return Standard
}

// ParseTier converts a configuration string into a Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case Standard, UHQ:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("unknown quality tier %q", s)
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == Standard || t == UHQ
}
