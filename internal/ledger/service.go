package ledger

import (
	"sync"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// Service serializes access to a Ledger so RPC handlers can share it.
// The lock is not reentrant: the Funds behind the ledger must never call
// back into the Service it is paying out for.
type Service struct {
	mu sync.Mutex
	l  *Ledger
}

// NewService wraps l.
func NewService(l *Ledger) *Service {
	return &Service{l: l}
}

// Terms returns the terms the ledger runs under.
func (s *Service) Terms() config.Terms {
	return s.l.Terms()
}

// Mint calls Ledger.Mint under the lock.
func (s *Service) Mint(buyer types.Address, quantity, paid uint64) (types.ItemRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Mint(buyer, quantity, paid)
}

// Refund calls Ledger.Refund under the lock.
func (s *Service) Refund(id types.ItemID, caller types.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Refund(id, caller)
}

// Withdraw calls Ledger.Withdraw under the lock.
func (s *Service) Withdraw(caller types.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Withdraw(caller)
}

// Deposit calls Ledger.Deposit under the lock.
func (s *Service) Deposit(caller, to types.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Deposit(caller, to, amount)
}

// QuoteDeadline returns the refund deadline of id; see Ledger.QuoteDeadline.
func (s *Service) QuoteDeadline(id types.ItemID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.QuoteDeadline(id)
}

// QuoteAmount returns what refunding id would pay.
func (s *Service) QuoteAmount(id types.ItemID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.QuoteAmount(id)
}

// Status reports whether id is refundable at the current clock reading.
func (s *Service) Status(id types.ItemID) (RefundStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Status(id)
}

// Record returns the stored refund record of id.
func (s *Service) Record(id types.ItemID) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Record(id)
}

// MintedBy returns the lifetime mint count of buyer.
func (s *Service) MintedBy(buyer types.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.MintedBy(buyer)
}

// Info returns a snapshot of the sale.
func (s *Service) Info() (*Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Info()
}

// View runs fn under the lock. Use it for reads of collaborators that share
// the ledger's transaction stack (the registry, the payout accounts).
func (s *Service) View(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
