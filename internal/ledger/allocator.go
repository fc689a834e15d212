package ledger

import (
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// allocator enforces the supply cap and the per-buyer cap.
type allocator struct {
	state       *stateStore
	maxSupply   uint64
	maxPerBuyer uint64
}

// allocate reserves quantity contiguous IDs for buyer starting at the
// current issued count, and bumps both counters. Nothing is written unless
// both caps hold.
//
// The per-buyer count is lifetime: refunds never lower it, so a buyer
// cannot mint, refund and mint again past the cap.
func (a *allocator) allocate(buyer types.Address, quantity uint64) (types.ItemRange, error) {
	if quantity == 0 {
		return types.ItemRange{}, ErrInvalidQuantity
	}

	minted, err := a.state.minted(buyer)
	if err != nil {
		return types.ItemRange{}, err
	}
	if quantity > a.maxPerBuyer || minted > a.maxPerBuyer-quantity {
		return types.ItemRange{}, fmt.Errorf("%w: %s has minted %d, limit %d",
			ErrPerBuyerLimitExceeded, buyer, minted, a.maxPerBuyer)
	}

	issued, err := a.state.issued()
	if err != nil {
		return types.ItemRange{}, err
	}
	if quantity > a.maxSupply || issued > a.maxSupply-quantity {
		return types.ItemRange{}, fmt.Errorf("%w: %d issued, %d requested, max %d",
			ErrSupplyExceeded, issued, quantity, a.maxSupply)
	}

	if err := a.state.setMinted(buyer, minted+quantity); err != nil {
		return types.ItemRange{}, err
	}
	if err := a.state.setIssued(issued + quantity); err != nil {
		return types.ItemRange{}, err
	}
	return types.ItemRange{First: types.ItemID(issued), Count: quantity}, nil
}
