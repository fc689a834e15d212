package types

import (
	"encoding/binary"
	"fmt"
)

// ItemID is the sequential identifier of an issued item. The first item
// ever minted has ID 0.
type ItemID uint64

// ItemIDSize is the encoded length of an ItemID in storage keys.
const ItemIDSize = 8

// Bytes returns the big-endian encoding, so keys sort in mint order.
func (id ItemID) Bytes() []byte {
	var b [ItemIDSize]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

// ItemIDFromBytes decodes a big-endian ItemID.
func ItemIDFromBytes(b []byte) (ItemID, error) {
	if len(b) != ItemIDSize {
		return 0, fmt.Errorf("item id must be %d bytes, got %d", ItemIDSize, len(b))
	}
	return ItemID(binary.BigEndian.Uint64(b)), nil
}

// ItemRange is a contiguous run of item IDs [First, First+Count).
type ItemRange struct {
	First ItemID `json:"first"`
	Count uint64 `json:"count"`
}

// Last returns the final ID in the range. Undefined for an empty range.
func (r ItemRange) Last() ItemID {
	return r.First + ItemID(r.Count) - 1
}

// IDs expands the range into individual IDs.
func (r ItemRange) IDs() []ItemID {
	ids := make([]ItemID, 0, r.Count)
	for i := uint64(0); i < r.Count; i++ {
		ids = append(ids, r.First+ItemID(i))
	}
	return ids
}

// Contains reports whether id falls inside the range.
func (r ItemRange) Contains(id ItemID) bool {
	return id >= r.First && uint64(id-r.First) < r.Count
}
