package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/crypto"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// =============================================================================
// Sale Terms (immutable once the ledger exists)
// =============================================================================

// Denomination constants.
// 1 coin = 10^8 base units. All ledger amounts are in base units.
const (
	Decimals  = 8
	Coin      = 100_000_000
	MilliCoin = 100_000
)

// Default sale terms.
const (
	DefaultPrice        uint64 = 1 * Coin
	DefaultMaxPerBuyer  uint64 = 3
	DefaultMaxSupply    uint64 = 100
	DefaultRefundPeriod        = 3 * time.Minute
)

// termsDigestTag domain-separates the terms digest from other hashes.
const termsDigestTag = "refundmint terms v1"

// ErrTermsNotFound is returned by LoadTerms when the file does not exist.
var ErrTermsNotFound = errors.New("terms file not found")

// Terms holds the rules of the sale. They are written once, when the
// ledger is created, and pinned by digest from then on.
type Terms struct {
	Owner            types.Address `json:"owner"`
	Price            uint64        `json:"price"`              // Base units per item.
	MaxPerBuyer      uint64        `json:"max_per_buyer"`      // Lifetime mints per buyer; refunds do not restore it.
	MaxSupply        uint64        `json:"max_supply"`         // Total items ever issued.
	RefundPeriodSecs uint64        `json:"refund_period_secs"` // Window length after each mint.
}

// DefaultTerms returns the standard terms for the given owner.
func DefaultTerms(owner types.Address) *Terms {
	return &Terms{
		Owner:            owner,
		Price:            DefaultPrice,
		MaxPerBuyer:      DefaultMaxPerBuyer,
		MaxSupply:        DefaultMaxSupply,
		RefundPeriodSecs: uint64(DefaultRefundPeriod / time.Second),
	}
}

// RefundPeriod returns the refund window as a duration.
func (t *Terms) RefundPeriod() time.Duration {
	return time.Duration(t.RefundPeriodSecs) * time.Second
}

// Validate checks the terms for values the ledger cannot operate under.
func (t *Terms) Validate() error {
	if t == nil {
		return fmt.Errorf("terms are nil")
	}
	if t.Owner.IsZero() {
		return fmt.Errorf("owner address is required")
	}
	if t.Price == 0 {
		return fmt.Errorf("price must be positive")
	}
	if t.MaxSupply == 0 {
		return fmt.Errorf("max_supply must be positive")
	}
	if t.MaxPerBuyer == 0 {
		return fmt.Errorf("max_per_buyer must be positive")
	}
	if t.MaxPerBuyer > t.MaxSupply {
		return fmt.Errorf("max_per_buyer (%d) exceeds max_supply (%d)", t.MaxPerBuyer, t.MaxSupply)
	}
	if t.RefundPeriodSecs == 0 {
		return fmt.Errorf("refund_period_secs must be positive")
	}
	// Every price computation is quantity*Price with quantity <= MaxSupply.
	if t.Price > math.MaxUint64/t.MaxSupply {
		return fmt.Errorf("price * max_supply overflows uint64")
	}
	return nil
}

// Digest returns the BLAKE3 digest of the canonical JSON encoding.
func (t *Terms) Digest() (types.Hash, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return types.Hash{}, fmt.Errorf("marshal terms: %w", err)
	}
	return crypto.TaggedHash(termsDigestTag, data), nil
}

// LoadTerms reads and validates a terms file.
func LoadTerms(path string) (*Terms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTermsNotFound, path)
		}
		return nil, fmt.Errorf("read terms: %w", err)
	}
	var t Terms
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse terms: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid terms: %w", err)
	}
	return &t, nil
}

// WriteTerms validates t and writes it to path. An existing file is never
// overwritten.
func WriteTerms(path string, t *Terms) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid terms: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("terms file %s already exists", path)
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
