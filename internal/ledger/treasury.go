package ledger

import (
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/log"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// Sender moves value out of the ledger. A non-nil error unwinds the whole
// operation that asked for the transfer.
type Sender interface {
	Send(to types.Address, amount uint64) error
}

// Collector moves value into the ledger. It debits exactly amount from the
// payer or fails without side effects.
type Collector interface {
	Collect(from types.Address, amount uint64) error
}

// Funds is the account book the ledger takes payments from and pays out to.
type Funds interface {
	Collector
	Sender
}

// treasury holds collected funds. collect is the only place value enters
// and payout the only place it leaves.
type treasury struct {
	state *stateStore
	funds Funds
	owner types.Address
}

func (t *treasury) balance() (uint64, error) {
	return t.state.treasury()
}

// canHold reports ErrPaymentOverflow if the balance cannot take amount more.
func (t *treasury) canHold(amount uint64) error {
	bal, err := t.state.treasury()
	if err != nil {
		return err
	}
	if bal+amount < bal {
		return fmt.Errorf("%w: holds %d, paid %d", ErrPaymentOverflow, bal, amount)
	}
	return nil
}

// collect debits amount from the payer and adds it to the balance.
func (t *treasury) collect(from types.Address, amount uint64) error {
	if err := t.canHold(amount); err != nil {
		return err
	}
	if err := t.funds.Collect(from, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}
	bal, err := t.state.treasury()
	if err != nil {
		return err
	}
	return t.state.setTreasury(bal + amount)
}

// payout debits the held balance and then sends. The send is the last
// thing payout does.
func (t *treasury) payout(to types.Address, amount uint64) error {
	bal, err := t.state.treasury()
	if err != nil {
		return err
	}
	if amount > bal {
		return fmt.Errorf("treasury holds %d, payout needs %d", bal, amount)
	}
	if err := t.state.setTreasury(bal - amount); err != nil {
		return err
	}

	if err := t.funds.Send(to, amount); err != nil {
		log.Treasury.Warn().Err(err).
			Str("to", to.String()).
			Uint64("amount", amount).
			Msg("Payout rejected")
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

// withdrawAll sweeps the whole balance to the owner once every refund
// window has closed. An empty treasury sweeps 0 without calling Send.
func (t *treasury) withdrawAll(caller types.Address, now uint64) (uint64, error) {
	if caller != t.owner {
		return 0, ErrNotOwner
	}
	horizon, err := t.state.horizon()
	if err != nil {
		return 0, err
	}
	if now <= horizon {
		return 0, fmt.Errorf("%w: horizon %d, now %d", ErrRefundHorizonNotElapsed, horizon, now)
	}

	amount, err := t.balance()
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, nil
	}
	if err := t.payout(caller, amount); err != nil {
		return 0, err
	}
	return amount, nil
}
