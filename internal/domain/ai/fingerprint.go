package ai

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// DefaultFingerprint is the sentinel used when an asset carries no metadata.
const DefaultFingerprint = "default"

// MetadataFingerprint returns a deterministic digest of an asset's metadata
// map, used as the third cache key component. encoding/json marshals map
// keys in sorted order, so the serialization is canonical regardless of
// insertion order.
func MetadataFingerprint(metadata map[string]any) string {
	if len(metadata) == 0 {
		return DefaultFingerprint
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return DefaultFingerprint
	}
	h := fnv.New64a()
	h.Write(b)
	return fmt.Sprintf("%x", h.Sum64())
}
