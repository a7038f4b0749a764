package storage

import "hash/fnv"

// scopeKey derives the deltas table key for a branch. Only the branch
// participates in the hash; the date within a branch's log is selected by
// range once the blob is decoded, not by the key itself (§ "Delta scope").
// This is the one place left on a plain stdlib hash rather than a pack
// library: the original source's own key derivation is just
// std::hash::DefaultHasher over the branch, i.e. "any deterministic
// integer hash", and nothing in the retrieval pack's dependency surface
// offers a non-cryptographic integer hash better suited than hash/fnv.
func scopeKey(branch uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(branch >> (8 * i))
	}
	h.Write(buf[:])
	return h.Sum64()
}
