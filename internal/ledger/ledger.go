// Package ledger implements the refundable mint: bounded issuance, a
// refund window per item, and an owner withdrawal that stays locked until
// the latest refund deadline has passed.
//
// Every operation runs inside one level of a storage.TxStack shared with
// the ownership registry and the payout accounts. An operation either
// commits all of its writes, across all three, or none of them. A nested
// call made while a payout is in flight opens a child level and sees the
// parent's uncommitted writes, including the refunded flag.
package ledger

import (
	"fmt"
	"math"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/log"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// StatePrefix namespaces ledger state inside the shared database.
var StatePrefix = []byte("ledger/")

// Registry is the ownership registry the ledger drives.
type Registry interface {
	HolderOf(id types.ItemID) (types.Address, error)
	Mint(to types.Address, quantity uint64) (types.ItemID, error)
	Transfer(from, to types.Address, id types.ItemID) error
	TotalIssued() (uint64, error)
}

// Info is a snapshot of the sale.
type Info struct {
	Terms        config.Terms `json:"terms"`
	TotalIssued  uint64       `json:"total_issued"`
	Horizon      uint64       `json:"horizon"`
	Treasury     uint64       `json:"treasury"`
	Now          uint64       `json:"now"`
	Withdrawable bool         `json:"withdrawable"`
}

// Ledger is the accounting core. It is not safe for concurrent use; wrap it
// in a Service to share it between goroutines.
type Ledger struct {
	terms    config.Terms
	stack    *storage.TxStack
	state    *stateStore
	registry Registry
	clock    Clock

	alloc    *allocator
	refunds  *refundBook
	treasury *treasury
}

// New creates a ledger over stack. The first call on an empty database
// pins terms; later calls must pass identical terms.
func New(terms *config.Terms, stack *storage.TxStack, registry Registry, funds Funds, clock Clock) (*Ledger, error) {
	if err := terms.Validate(); err != nil {
		return nil, fmt.Errorf("terms: %w", err)
	}
	if stack == nil {
		return nil, fmt.Errorf("transaction stack is nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if funds == nil {
		return nil, fmt.Errorf("funds is nil")
	}
	if clock == nil {
		clock = SystemClock{}
	}

	state := &stateStore{db: storage.NewPrefixDB(stack, StatePrefix)}
	l := &Ledger{
		terms:    *terms,
		stack:    stack,
		state:    state,
		registry: registry,
		clock:    clock,
		alloc: &allocator{
			state:       state,
			maxSupply:   terms.MaxSupply,
			maxPerBuyer: terms.MaxPerBuyer,
		},
		refunds: &refundBook{
			state:    state,
			registry: registry,
			price:    terms.Price,
		},
		treasury: &treasury{
			state: state,
			funds: funds,
			owner: terms.Owner,
		},
	}

	if err := l.atomic(l.pinTerms); err != nil {
		return nil, err
	}
	if err := l.checkRegistry(); err != nil {
		return nil, err
	}
	return l, nil
}

// pinTerms stores the terms digest on first use and compares it afterwards.
func (l *Ledger) pinTerms() error {
	want, err := l.terms.Digest()
	if err != nil {
		return err
	}
	got, ok, err := l.state.termsDigest()
	if err != nil {
		return err
	}
	if !ok {
		log.Ledger.Info().Str("terms", want.String()).Msg("Pinning sale terms")
		return l.state.setTermsDigest(want)
	}
	if got != want {
		return fmt.Errorf("%w: stored %s, given %s", ErrTermsMismatch, got, want)
	}
	return nil
}

func (l *Ledger) checkRegistry() error {
	issued, err := l.state.issued()
	if err != nil {
		return err
	}
	regIssued, err := l.registry.TotalIssued()
	if err != nil {
		return fmt.Errorf("registry total: %w", err)
	}
	if issued != regIssued {
		return fmt.Errorf("%w: ledger issued %d, registry %d", ErrRegistryMismatch, issued, regIssued)
	}
	return nil
}

// atomic runs fn in a fresh transaction level.
func (l *Ledger) atomic(fn func() error) error {
	l.stack.Begin()
	if err := fn(); err != nil {
		if rbErr := l.stack.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := l.stack.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (l *Ledger) now() uint64 {
	return unixSeconds(l.clock.Now())
}

// Terms returns the terms the ledger runs under.
func (l *Ledger) Terms() config.Terms {
	return l.terms
}

// Mint sells quantity items to buyer. paid is the most buyer agrees to pay
// and must cover quantity*Price; exactly quantity*Price is collected from
// buyer into the treasury, so the treasury never holds more than
// MaxSupply*Price. Each minted item can be refunded until now+RefundPeriod,
// with now rounded up to a whole second.
func (l *Ledger) Mint(buyer types.Address, quantity, paid uint64) (types.ItemRange, error) {
	start := ceilSeconds(l.clock.Now())
	var minted types.ItemRange

	err := l.atomic(func() error {
		if quantity == 0 {
			return ErrInvalidQuantity
		}
		if quantity > math.MaxUint64/l.terms.Price || paid < quantity*l.terms.Price {
			return fmt.Errorf("%w: paid %d for %d items at %d", ErrInsufficientPayment, paid, quantity, l.terms.Price)
		}
		cost := quantity * l.terms.Price
		if err := l.treasury.collect(buyer, cost); err != nil {
			return err
		}

		r, err := l.alloc.allocate(buyer, quantity)
		if err != nil {
			return err
		}

		deadline := start + l.terms.RefundPeriodSecs
		if deadline < start {
			deadline = math.MaxUint64
		}
		if err := l.refunds.openWindows(r, deadline); err != nil {
			return err
		}
		horizon, err := l.state.horizon()
		if err != nil {
			return err
		}
		if deadline > horizon {
			if err := l.state.setHorizon(deadline); err != nil {
				return err
			}
		}

		first, err := l.registry.Mint(buyer, quantity)
		if err != nil {
			return fmt.Errorf("registry mint: %w", err)
		}
		if first != r.First {
			return fmt.Errorf("%w: registry assigned %d, allocated %d", ErrRegistryMismatch, first, r.First)
		}
		minted = r
		return nil
	})
	if err != nil {
		log.Ledger.Info().Err(err).
			Str("buyer", buyer.String()).
			Uint64("quantity", quantity).
			Uint64("paid", paid).
			Msg("Mint rejected")
		return types.ItemRange{}, err
	}

	log.Ledger.Debug().
		Str("buyer", buyer.String()).
		Uint64("first", uint64(minted.First)).
		Uint64("count", minted.Count).
		Uint64("charged", minted.Count*l.terms.Price).
		Msg("Minted")
	return minted, nil
}

// Refund returns id to the owner and pays caller the price. caller must
// hold id and the item's window must still be open.
func (l *Ledger) Refund(id types.ItemID, caller types.Address) (uint64, error) {
	now := l.now()
	var amount uint64

	err := l.atomic(func() error {
		amt, err := l.refunds.settle(id, caller, now)
		if err != nil {
			return err
		}
		if err := l.registry.Transfer(caller, l.terms.Owner, id); err != nil {
			return fmt.Errorf("registry transfer: %w", err)
		}
		// Nothing may be written after the payout.
		if err := l.treasury.payout(caller, amt); err != nil {
			return err
		}
		amount = amt
		return nil
	})
	if err != nil {
		log.Ledger.Info().Err(err).
			Uint64("item", uint64(id)).
			Str("claimant", caller.String()).
			Msg("Refund rejected")
		return 0, err
	}

	log.Ledger.Debug().
		Uint64("item", uint64(id)).
		Str("to", caller.String()).
		Uint64("amount", amount).
		Msg("Refunded")
	return amount, nil
}

// Withdraw sweeps the treasury to the owner. It fails until the latest
// refund deadline has passed.
func (l *Ledger) Withdraw(caller types.Address) (uint64, error) {
	now := l.now()
	var amount uint64

	err := l.atomic(func() error {
		amt, err := l.treasury.withdrawAll(caller, now)
		if err != nil {
			return err
		}
		amount = amt
		return nil
	})
	if err != nil {
		log.Treasury.Warn().Err(err).
			Str("from", caller.String()).
			Msg("Withdrawal rejected")
		return 0, err
	}

	log.Treasury.Info().
		Str("owner", caller.String()).
		Uint64("amount", amount).
		Msg("Treasury withdrawn")
	return amount, nil
}

// Deposit credits amount to the account of to. Only the owner may fund
// accounts; the treasury is not touched.
func (l *Ledger) Deposit(caller, to types.Address, amount uint64) error {
	err := l.atomic(func() error {
		if caller != l.terms.Owner {
			return ErrNotOwner
		}
		if amount == 0 {
			return ErrInvalidAmount
		}
		if err := l.treasury.funds.Send(to, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		log.Treasury.Warn().Err(err).
			Str("from", caller.String()).
			Str("to", to.String()).
			Uint64("amount", amount).
			Msg("Deposit rejected")
		return err
	}

	log.Treasury.Info().
		Str("to", to.String()).
		Uint64("amount", amount).
		Msg("Account funded")
	return nil
}

// QuoteDeadline returns the refund deadline of id in unix seconds, or 0 if
// id has been refunded. Unknown IDs return ErrItemNotFound.
func (l *Ledger) QuoteDeadline(id types.ItemID) (uint64, error) {
	return l.refunds.quoteDeadline(id)
}

// QuoteAmount returns what a refund of id would pay, or 0 if id has been
// refunded. Unknown IDs return ErrItemNotFound.
func (l *Ledger) QuoteAmount(id types.ItemID) (uint64, error) {
	return l.refunds.quoteAmount(id)
}

// Status reports whether id is refundable right now.
func (l *Ledger) Status(id types.ItemID) (RefundStatus, error) {
	return l.refunds.status(id, l.now())
}

// Record returns the stored refund record of id.
func (l *Ledger) Record(id types.ItemID) (Record, error) {
	rec, err := l.state.getRecord(id)
	if err != nil {
		return Record{}, err
	}
	return *rec, nil
}

// MintedBy returns how many items buyer has ever minted.
func (l *Ledger) MintedBy(buyer types.Address) (uint64, error) {
	return l.state.minted(buyer)
}

// Info returns a snapshot of the sale counters.
func (l *Ledger) Info() (*Info, error) {
	issued, err := l.state.issued()
	if err != nil {
		return nil, err
	}
	horizon, err := l.state.horizon()
	if err != nil {
		return nil, err
	}
	bal, err := l.treasury.balance()
	if err != nil {
		return nil, err
	}
	now := l.now()
	return &Info{
		Terms:        l.terms,
		TotalIssued:  issued,
		Horizon:      horizon,
		Treasury:     bal,
		Now:          now,
		Withdrawable: now > horizon,
	}, nil
}
