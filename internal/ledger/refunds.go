package ledger

import (
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// RefundStatus is the refund state of an item at a point in time.
type RefundStatus int

const (
	RefundUnknown RefundStatus = iota // Never minted.
	RefundOpen                        // Refundable now.
	RefundExpired                     // Deadline passed; the item stays minted.
	RefundSettled                     // Refunded.
)

// String returns the status name.
func (s RefundStatus) String() string {
	switch s {
	case RefundOpen:
		return "open"
	case RefundExpired:
		return "expired"
	case RefundSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// refundBook keeps one Record per item.
type refundBook struct {
	state    *stateStore
	registry Registry
	price    uint64
}

// openWindows records deadline for every item in r.
func (b *refundBook) openWindows(r types.ItemRange, deadline uint64) error {
	for _, id := range r.IDs() {
		if err := b.state.putRecord(id, &Record{Deadline: deadline}); err != nil {
			return err
		}
	}
	return nil
}

// quoteDeadline returns 0 for a refunded item, else its deadline.
func (b *refundBook) quoteDeadline(id types.ItemID) (uint64, error) {
	rec, err := b.state.getRecord(id)
	if err != nil {
		return 0, err
	}
	if rec.Refunded {
		return 0, nil
	}
	return rec.Deadline, nil
}

// quoteAmount returns 0 for a refunded item, else the price.
func (b *refundBook) quoteAmount(id types.ItemID) (uint64, error) {
	rec, err := b.state.getRecord(id)
	if err != nil {
		return 0, err
	}
	if rec.Refunded {
		return 0, nil
	}
	return b.price, nil
}

func (b *refundBook) status(id types.ItemID, now uint64) (RefundStatus, error) {
	rec, err := b.state.getRecord(id)
	if err != nil {
		return RefundUnknown, err
	}
	switch {
	case rec.Refunded:
		return RefundSettled, nil
	case now < rec.Deadline:
		return RefundOpen, nil
	default:
		return RefundExpired, nil
	}
}

// settle validates a refund claim and marks the item refunded. The window
// is checked before the holder, so a late claim fails as closed whoever
// makes it.
func (b *refundBook) settle(id types.ItemID, claimant types.Address, now uint64) (uint64, error) {
	rec, err := b.state.getRecord(id)
	if err != nil {
		return 0, err
	}
	if rec.Refunded {
		return 0, fmt.Errorf("%w: item %d", ErrAlreadyRefunded, id)
	}
	if now >= rec.Deadline {
		return 0, fmt.Errorf("%w: item %d deadline %d, now %d", ErrWindowClosed, id, rec.Deadline, now)
	}

	holder, err := b.registry.HolderOf(id)
	if err != nil {
		return 0, fmt.Errorf("holder of %d: %w", id, err)
	}
	if holder != claimant {
		return 0, fmt.Errorf("%w: item %d", ErrNotHolder, id)
	}

	rec.Refunded = true
	if err := b.state.putRecord(id, rec); err != nil {
		return 0, err
	}
	return b.price, nil
}
