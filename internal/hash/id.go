// Package hash provides the 64-bit identity used to key per-field codec
// state. Field keys are hashed once on first sight and used as map keys for
// the lifetime of a session.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
