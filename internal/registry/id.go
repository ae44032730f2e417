// ABOUTME: Asset kinds and the asset id format
// ABOUTME: Ids carry their kind so it can be inferred without a store lookup

package registry

import (
	"fmt"
	"strings"
)

// IDPrefix marks a string as a registry id.
const IDPrefix = "asset_"

// Kind is the type of a registered asset.
type Kind string

const (
	KindRender  Kind = "render"
	KindGarment Kind = "garment"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindRender || k == KindGarment
}

// IsAssetID reports whether ref names a registry asset.
func IsAssetID(ref string) bool {
	return strings.HasPrefix(ref, IDPrefix)
}

// KindOf infers the kind encoded in id.
func KindOf(id string) (Kind, bool) {
	rest, ok := strings.CutPrefix(id, IDPrefix)
	if !ok {
		return "", false
	}
	kind, _, ok := strings.Cut(rest, "_")
	if !ok || !Kind(kind).Valid() {
		return "", false
	}
	return Kind(kind), true
}

func formatID(kind Kind, millis int64, seq uint64) string {
	return fmt.Sprintf("%s%s_%d_%d", IDPrefix, kind, millis, seq)
}
