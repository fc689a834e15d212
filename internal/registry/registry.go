// Package registry records which account holds each issued item.
//
// The registry is deliberately dumb: it assigns sequential IDs, answers
// holder queries and moves items between accounts when told to. Every
// sale rule (caps, payment, refund windows) lives in the ledger, which
// drives the registry through the same transaction stack it writes its own
// state to.
package registry

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/log"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// Registry errors.
var (
	ErrUnknownItem  = errors.New("unknown item")
	ErrNotHolder    = errors.New("account does not hold item")
	ErrZeroAddress  = errors.New("zero address cannot hold items")
	ErrZeroQuantity = errors.New("mint quantity must be positive")
)

// Key prefixes and state keys for the registry.
var (
	prefixHolder   = []byte("h/") // h/<id(8)> -> holder(20)
	prefixHoldings = []byte("o/") // o/<holder(20)><id(8)> -> empty (index)
	keyIssued      = []byte("s/issued")
)

// Registry is the ownership registry backed by a storage.DB.
type Registry struct {
	db storage.DB
}

// New creates a registry backed by the given database.
func New(db storage.DB) *Registry {
	return &Registry{db: db}
}

func holderKey(id types.ItemID) []byte {
	key := make([]byte, len(prefixHolder)+types.ItemIDSize)
	copy(key, prefixHolder)
	copy(key[len(prefixHolder):], id.Bytes())
	return key
}

// holdingsKey builds "o/" + holder(20) + id(8).
func holdingsKey(holder types.Address, id types.ItemID) []byte {
	key := make([]byte, len(prefixHoldings)+types.AddressSize+types.ItemIDSize)
	copy(key, prefixHoldings)
	copy(key[len(prefixHoldings):], holder[:])
	copy(key[len(prefixHoldings)+types.AddressSize:], id.Bytes())
	return key
}

// HolderOf returns the account currently holding id.
func (r *Registry) HolderOf(id types.ItemID) (types.Address, error) {
	data, err := r.db.Get(holderKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.Address{}, fmt.Errorf("%w: %d", ErrUnknownItem, id)
		}
		return types.Address{}, fmt.Errorf("holder get: %w", err)
	}
	if len(data) != types.AddressSize {
		return types.Address{}, fmt.Errorf("corrupt holder record for item %d: %d bytes", id, len(data))
	}
	var holder types.Address
	copy(holder[:], data)
	return holder, nil
}

// TotalIssued returns the number of items ever minted.
func (r *Registry) TotalIssued() (uint64, error) {
	data, err := r.db.Get(keyIssued)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("issued get: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt issued counter: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// Mint assigns quantity new sequential items to to and returns the first ID.
func (r *Registry) Mint(to types.Address, quantity uint64) (types.ItemID, error) {
	if to.IsZero() {
		return 0, ErrZeroAddress
	}
	if quantity == 0 {
		return 0, ErrZeroQuantity
	}
	issued, err := r.TotalIssued()
	if err != nil {
		return 0, err
	}
	if issued+quantity < issued {
		return 0, fmt.Errorf("issued counter overflow")
	}

	first := types.ItemID(issued)
	for i := uint64(0); i < quantity; i++ {
		if err := r.assign(first+types.ItemID(i), to); err != nil {
			return 0, err
		}
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], issued+quantity)
	if err := r.db.Put(keyIssued, buf[:]); err != nil {
		return 0, fmt.Errorf("issued put: %w", err)
	}

	log.Registry.Debug().
		Str("to", to.String()).
		Uint64("first", uint64(first)).
		Uint64("quantity", quantity).
		Msg("Items minted")
	return first, nil
}

// Transfer moves id from from to to. from must be the current holder.
func (r *Registry) Transfer(from, to types.Address, id types.ItemID) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	holder, err := r.HolderOf(id)
	if err != nil {
		return err
	}
	if holder != from {
		return fmt.Errorf("%w: item %d held by %s", ErrNotHolder, id, holder)
	}
	if from == to {
		return nil
	}
	if err := r.db.Delete(holdingsKey(from, id)); err != nil {
		return fmt.Errorf("holdings delete: %w", err)
	}
	if err := r.assign(id, to); err != nil {
		return err
	}

	log.Registry.Debug().
		Uint64("item", uint64(id)).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Item transferred")
	return nil
}

// ItemsOf lists the items held by holder in ID order.
func (r *Registry) ItemsOf(holder types.Address) ([]types.ItemID, error) {
	prefix := make([]byte, len(prefixHoldings)+types.AddressSize)
	copy(prefix, prefixHoldings)
	copy(prefix[len(prefixHoldings):], holder[:])

	ids := []types.ItemID{}
	err := r.db.ForEach(prefix, func(key, _ []byte) error {
		id, err := types.ItemIDFromBytes(key[len(prefix):])
		if err != nil {
			return nil // Malformed key, skip.
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("holdings scan: %w", err)
	}
	return ids, nil
}

func (r *Registry) assign(id types.ItemID, to types.Address) error {
	if err := r.db.Put(holderKey(id), to[:]); err != nil {
		return fmt.Errorf("holder put: %w", err)
	}
	if err := r.db.Put(holdingsKey(to, id), []byte{}); err != nil {
		return fmt.Errorf("holdings put: %w", err)
	}
	return nil
}
