package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/payout"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/registry"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

var (
	owner  = types.Address{0x0e}
	buyerA = types.Address{0xa1}
	buyerB = types.Address{0xb2}

	t0 = time.Unix(1_700_000_000, 0)
)

const price = config.DefaultPrice

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func (c *fakeClock) set(t time.Time) { c.now = t }

// switchSender fails every send while fail is set. Collections pass through.
type switchSender struct {
	inner Funds
	fail  bool
}

var errSendRejected = errors.New("recipient rejected transfer")

func (s *switchSender) Send(to types.Address, amount uint64) error {
	if s.fail {
		return errSendRejected
	}
	return s.inner.Send(to, amount)
}

func (s *switchSender) Collect(from types.Address, amount uint64) error {
	return s.inner.Collect(from, amount)
}

// reentrantSender tries to refund the same item again from inside the
// payout, then pays normally.
type reentrantSender struct {
	inner   Funds
	l       *Ledger
	id      types.ItemID
	caller  types.Address
	calls   int
	nested  error
	nestAmt uint64
}

func (s *reentrantSender) Send(to types.Address, amount uint64) error {
	s.calls++
	if s.l != nil && s.calls == 1 {
		s.nestAmt, s.nested = s.l.Refund(s.id, s.caller)
	}
	return s.inner.Send(to, amount)
}

func (s *reentrantSender) Collect(from types.Address, amount uint64) error {
	return s.inner.Collect(from, amount)
}

type harness struct {
	l     *Ledger
	stack *storage.TxStack
	reg   *registry.Registry
	acc   *payout.Accounts
	clock *fakeClock
	terms *config.Terms
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, storage.NewMemory(), config.DefaultTerms(owner), nil)
}

// newHarnessWith builds a ledger over db. wrap, if non-nil, decorates the
// payout accounts before they are handed to the ledger.
func newHarnessWith(t *testing.T, db storage.DB, terms *config.Terms, wrap func(Funds) Funds) *harness {
	t.Helper()
	stack := storage.NewTxStack(db)
	reg := registry.New(storage.NewPrefixDB(stack, []byte("registry/")))
	acc := payout.NewAccounts(storage.NewPrefixDB(stack, []byte("payout/")))
	clock := &fakeClock{now: t0}

	var funds Funds = acc
	if wrap != nil {
		funds = wrap(acc)
	}
	l, err := New(terms, stack, reg, funds, clock)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{l: l, stack: stack, reg: reg, acc: acc, clock: clock, terms: terms}
}

// fund credits addr straight through the account book, outside any ledger
// operation.
func (h *harness) fund(t *testing.T, addr types.Address, amount uint64) {
	t.Helper()
	if err := h.acc.Send(addr, amount); err != nil {
		t.Fatalf("fund %s: %v", addr, err)
	}
}

// mint funds buyer with the exact cost and mints.
func (h *harness) mint(t *testing.T, buyer types.Address, quantity uint64) types.ItemRange {
	t.Helper()
	h.fund(t, buyer, quantity*h.terms.Price)
	r, err := h.l.Mint(buyer, quantity, quantity*h.terms.Price)
	if err != nil {
		t.Fatalf("Mint(%s, %d): %v", buyer, quantity, err)
	}
	return r
}

func (h *harness) holder(t *testing.T, id types.ItemID) types.Address {
	t.Helper()
	addr, err := h.reg.HolderOf(id)
	if err != nil {
		t.Fatalf("HolderOf(%d): %v", id, err)
	}
	return addr
}

func (h *harness) balance(t *testing.T, addr types.Address) uint64 {
	t.Helper()
	bal, err := h.acc.Balance(addr)
	if err != nil {
		t.Fatalf("Balance(%s): %v", addr, err)
	}
	return bal
}

func (h *harness) info(t *testing.T) *Info {
	t.Helper()
	info, err := h.l.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	return info
}

// snapshot captures the counters a rejected operation must not move.
type snapshot struct {
	issued, regIssued, treasury, horizon uint64
	mintedA, mintedB                     uint64
}

func (h *harness) snapshot(t *testing.T) snapshot {
	t.Helper()
	info := h.info(t)
	regIssued, err := h.reg.TotalIssued()
	if err != nil {
		t.Fatal(err)
	}
	a, _ := h.l.MintedBy(buyerA)
	b, _ := h.l.MintedBy(buyerB)
	return snapshot{
		issued:    info.TotalIssued,
		regIssued: regIssued,
		treasury:  info.Treasury,
		horizon:   info.Horizon,
		mintedA:   a,
		mintedB:   b,
	}
}
