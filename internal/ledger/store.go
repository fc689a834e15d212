package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// Key prefixes and state keys for ledger state.
var (
	prefixRecord = []byte("r/") // r/<id(8)> -> Record JSON
	prefixMinted = []byte("m/") // m/<buyer(20)> -> count(8)
	keyIssued    = []byte("s/issued")
	keyHorizon   = []byte("s/horizon")
	keyTreasury  = []byte("s/treasury")
	keyTerms     = []byte("s/terms") // digest(32) of the terms the ledger was created with
)

// Record is the refund state of one item. Deadline is in unix seconds and
// refunds are accepted strictly before it. It is the mint time rounded up to
// a whole second plus the refund period.
type Record struct {
	Deadline uint64 `json:"deadline"`
	Refunded bool   `json:"refunded"`
}

// stateStore persists ledger state to a storage.DB.
type stateStore struct {
	db storage.DB
}

func recordKey(id types.ItemID) []byte {
	key := make([]byte, len(prefixRecord)+types.ItemIDSize)
	copy(key, prefixRecord)
	copy(key[len(prefixRecord):], id.Bytes())
	return key
}

func mintedKey(buyer types.Address) []byte {
	key := make([]byte, len(prefixMinted)+types.AddressSize)
	copy(key, prefixMinted)
	copy(key[len(prefixMinted):], buyer[:])
	return key
}

// getRecord returns the record for id, or ErrItemNotFound.
func (s *stateStore) getRecord(id types.ItemID) (*Record, error) {
	data, err := s.db.Get(recordKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrItemNotFound, id)
		}
		return nil, fmt.Errorf("record get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("record unmarshal: %w", err)
	}
	return &rec, nil
}

func (s *stateStore) putRecord(id types.ItemID, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("record marshal: %w", err)
	}
	if err := s.db.Put(recordKey(id), data); err != nil {
		return fmt.Errorf("record put: %w", err)
	}
	return nil
}

func (s *stateStore) minted(buyer types.Address) (uint64, error) {
	return s.getUint64(mintedKey(buyer))
}

func (s *stateStore) setMinted(buyer types.Address, n uint64) error {
	return s.putUint64(mintedKey(buyer), n)
}

func (s *stateStore) issued() (uint64, error) { return s.getUint64(keyIssued) }
func (s *stateStore) setIssued(n uint64) error { return s.putUint64(keyIssued, n) }
func (s *stateStore) horizon() (uint64, error) { return s.getUint64(keyHorizon) }
func (s *stateStore) setHorizon(t uint64) error { return s.putUint64(keyHorizon, t) }
func (s *stateStore) treasury() (uint64, error) { return s.getUint64(keyTreasury) }
func (s *stateStore) setTreasury(amount uint64) error { return s.putUint64(keyTreasury, amount) }

// termsDigest returns the pinned digest and whether one is stored.
func (s *stateStore) termsDigest() (types.Hash, bool, error) {
	data, err := s.db.Get(keyTerms)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.Hash{}, false, nil
		}
		return types.Hash{}, false, fmt.Errorf("terms digest get: %w", err)
	}
	if len(data) != types.HashSize {
		return types.Hash{}, false, fmt.Errorf("corrupt terms digest: %d bytes", len(data))
	}
	var h types.Hash
	copy(h[:], data)
	return h, true, nil
}

func (s *stateStore) setTermsDigest(h types.Hash) error {
	return s.db.Put(keyTerms, h[:])
}

// getUint64 reads a big-endian counter; a missing key reads as 0.
func (s *stateStore) getUint64(key []byte) (uint64, error) {
	data, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt counter %s: %d bytes", key, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (s *stateStore) putUint64(key []byte, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if err := s.db.Put(key, buf[:]); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
