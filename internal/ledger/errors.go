package ledger

import (
	"errors"
	"fmt"
)

// Rejections. Every one of them leaves the ledger exactly as it was.
var (
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInsufficientPayment     = errors.New("insufficient payment")
	ErrPaymentOverflow         = errors.New("payment overflows treasury")
	ErrPaymentFailed           = errors.New("payment collection failed")
	ErrPerBuyerLimitExceeded   = errors.New("per-buyer mint limit exceeded")
	ErrSupplyExceeded          = errors.New("max supply exceeded")
	ErrItemNotFound            = errors.New("item not found")
	ErrWindowClosed            = errors.New("refund window closed")
	ErrNotHolder               = errors.New("caller does not hold item")
	ErrNotOwner                = errors.New("caller is not the owner")
	ErrRefundHorizonNotElapsed = errors.New("refund horizon not elapsed")
	ErrTransferFailed          = errors.New("value transfer failed")
)

// ErrAlreadyRefunded is a closed window: errors.Is(ErrAlreadyRefunded,
// ErrWindowClosed) holds.
var ErrAlreadyRefunded = fmt.Errorf("%w: item already refunded", ErrWindowClosed)

// Consistency failures between the ledger and its collaborators.
var (
	ErrRegistryMismatch = errors.New("ownership registry out of step with ledger")
	ErrTermsMismatch    = errors.New("terms differ from those the ledger was created with")
)
