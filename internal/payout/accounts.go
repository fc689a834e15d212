// Package payout implements the account book the treasury collects from and
// pays through. Balances are kept in the same store as the ledger, so a
// payment or payout commits or rolls back together with the ledger
// operation that triggered it.
//
// Each account also carries a nonce that signed requests must quote, so a
// request can be executed at most once.
package payout

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/log"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// Payout errors.
var (
	ErrZeroRecipient       = errors.New("payout to zero address")
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNonceMismatch       = errors.New("nonce mismatch")
)

var (
	prefixBalance = []byte("b/") // b/<addr(20)> -> balance(8)
	prefixNonce   = []byte("n/") // n/<addr(20)> -> next nonce(8)
)

// Accounts holds per-address balances credited by payouts.
type Accounts struct {
	db storage.DB
}

// NewAccounts creates an account book backed by the given database.
func NewAccounts(db storage.DB) *Accounts {
	return &Accounts{db: db}
}

func addrKey(prefix []byte, addr types.Address) []byte {
	key := make([]byte, len(prefix)+types.AddressSize)
	copy(key, prefix)
	copy(key[len(prefix):], addr[:])
	return key
}

func balanceKey(addr types.Address) []byte { return addrKey(prefixBalance, addr) }
func nonceKey(addr types.Address) []byte { return addrKey(prefixNonce, addr) }

func (a *Accounts) getUint(key []byte, what string, addr types.Address) (uint64, error) {
	data, err := a.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s get: %w", what, err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt %s for %s: %d bytes", what, addr, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (a *Accounts) putUint(key []byte, what string, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if err := a.db.Put(key, buf[:]); err != nil {
		return fmt.Errorf("%s put: %w", what, err)
	}
	return nil
}

// Balance returns the amount credited to addr.
func (a *Accounts) Balance(addr types.Address) (uint64, error) {
	return a.getUint(balanceKey(addr), "balance", addr)
}

// Nonce returns the nonce the next signed request from addr must carry.
func (a *Accounts) Nonce(addr types.Address) (uint64, error) {
	return a.getUint(nonceKey(addr), "nonce", addr)
}

// UseNonce consumes nonce for addr. It fails with ErrNonceMismatch unless
// nonce is exactly the next one.
func (a *Accounts) UseNonce(addr types.Address, nonce uint64) error {
	next, err := a.Nonce(addr)
	if err != nil {
		return err
	}
	if nonce != next {
		return fmt.Errorf("%w: got %d, want %d", ErrNonceMismatch, nonce, next)
	}
	return a.putUint(nonceKey(addr), "nonce", next+1)
}

// Collect debits amount from from.
func (a *Accounts) Collect(from types.Address, amount uint64) error {
	bal, err := a.Balance(from)
	if err != nil {
		return err
	}
	if amount > bal {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientBalance, from, bal, amount)
	}
	if err := a.putUint(balanceKey(from), "balance", bal-amount); err != nil {
		return err
	}

	log.Treasury.Debug().
		Str("from", from.String()).
		Uint64("amount", amount).
		Uint64("balance", bal-amount).
		Msg("Payment collected")
	return nil
}

// Send credits amount to to.
func (a *Accounts) Send(to types.Address, amount uint64) error {
	if to.IsZero() {
		return ErrZeroRecipient
	}
	bal, err := a.Balance(to)
	if err != nil {
		return err
	}
	if bal+amount < bal {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}

	if err := a.putUint(balanceKey(to), "balance", bal+amount); err != nil {
		return err
	}

	log.Treasury.Debug().
		Str("to", to.String()).
		Uint64("amount", amount).
		Uint64("balance", bal+amount).
		Msg("Payout credited")
	return nil
}
