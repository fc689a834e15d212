package rpc

import (
	"errors"
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/ledger"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/registry"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// rejections maps ledger sentinels to the reason sent in Error.Data.
// Order matters: ErrAlreadyRefunded wraps ErrWindowClosed.
var rejections = []struct {
	err    error
	reason string
}{
	{ledger.ErrInvalidQuantity, "invalid_quantity"},
	{ledger.ErrInvalidAmount, "invalid_amount"},
	{ledger.ErrInsufficientPayment, "insufficient_payment"},
	{ledger.ErrPaymentOverflow, "payment_overflow"},
	{ledger.ErrPaymentFailed, "payment_failed"},
	{ledger.ErrPerBuyerLimitExceeded, "per_buyer_limit_exceeded"},
	{ledger.ErrSupplyExceeded, "supply_exceeded"},
	{ledger.ErrAlreadyRefunded, "already_refunded"},
	{ledger.ErrWindowClosed, "window_closed"},
	{ledger.ErrNotHolder, "not_holder"},
	{ledger.ErrNotOwner, "not_owner"},
	{ledger.ErrRefundHorizonNotElapsed, "refund_horizon_not_elapsed"},
	{ledger.ErrTransferFailed, "transfer_failed"},
	{registry.ErrZeroAddress, "zero_address"},
}

// ledgerError converts a ledger error into a JSON-RPC error.
func ledgerError(err error) *Error {
	if errors.Is(err, ledger.ErrItemNotFound) || errors.Is(err, registry.ErrUnknownItem) {
		return &Error{Code: CodeNotFound, Message: err.Error()}
	}
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return &Error{Code: CodeLedgerRejected, Message: err.Error(), Data: r.reason}
		}
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}

// ── Ledger endpoints ────────────────────────────────────────────────────

func (s *Server) handleLedgerMint(req *Request) (interface{}, *Error) {
	var params MintParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	unsigned := params
	unsigned.Auth = nil
	buyer, rpcErr := s.authorize(req.Method, &unsigned, params.Auth)
	if rpcErr != nil {
		return nil, rpcErr
	}

	r, err := s.ledger.Mint(buyer, params.Quantity, params.Paid)
	if err != nil {
		return nil, ledgerError(err)
	}
	rec, err := s.ledger.Record(r.First)
	if err != nil {
		return nil, ledgerError(err)
	}
	return &MintResult{
		Buyer:    buyer.String(),
		First:    uint64(r.First),
		Count:    r.Count,
		Deadline: rec.Deadline,
	}, nil
}

func (s *Server) handleLedgerRefund(req *Request) (interface{}, *Error) {
	var params RefundParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	unsigned := params
	unsigned.Auth = nil
	caller, rpcErr := s.authorize(req.Method, &unsigned, params.Auth)
	if rpcErr != nil {
		return nil, rpcErr
	}

	amount, err := s.ledger.Refund(types.ItemID(params.ItemID), caller)
	if err != nil {
		return nil, ledgerError(err)
	}
	return &AmountResult{Amount: amount}, nil
}

func (s *Server) handleLedgerWithdraw(req *Request) (interface{}, *Error) {
	var params WithdrawParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.authorize(req.Method, &WithdrawParam{}, params.Auth)
	if rpcErr != nil {
		return nil, rpcErr
	}

	amount, err := s.ledger.Withdraw(caller)
	if err != nil {
		return nil, ledgerError(err)
	}
	return &AmountResult{Amount: amount}, nil
}

func (s *Server) handleLedgerQuoteDeadline(req *Request) (interface{}, *Error) {
	var params ItemParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	id := types.ItemID(params.ItemID)

	deadline, err := s.ledger.QuoteDeadline(id)
	if err != nil {
		return nil, ledgerError(err)
	}
	status, err := s.ledger.Status(id)
	if err != nil {
		return nil, ledgerError(err)
	}
	return &DeadlineResult{ItemID: params.ItemID, Deadline: deadline, Status: status.String()}, nil
}

func (s *Server) handleLedgerQuoteAmount(req *Request) (interface{}, *Error) {
	var params ItemParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	amount, err := s.ledger.QuoteAmount(types.ItemID(params.ItemID))
	if err != nil {
		return nil, ledgerError(err)
	}
	return &AmountResult{Amount: amount}, nil
}

func (s *Server) handleLedgerGetInfo(_ *Request) (interface{}, *Error) {
	info, err := s.ledger.Info()
	if err != nil {
		return nil, ledgerError(err)
	}
	return newInfoResult(info, s.termsDigest), nil
}

// ── Item endpoints ──────────────────────────────────────────────────────

func (s *Server) handleItemHolderOf(req *Request) (interface{}, *Error) {
	var params ItemParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}

	var holder types.Address
	err := s.ledger.View(func() error {
		var err error
		holder, err = s.registry.HolderOf(types.ItemID(params.ItemID))
		return err
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return &HolderResult{ItemID: params.ItemID, Holder: holder.String()}, nil
}

func (s *Server) handleItemListByHolder(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, rpcErr := decodeAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var ids []types.ItemID
	err := s.ledger.View(func() error {
		var err error
		ids, err = s.registry.ItemsOf(addr)
		return err
	})
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list items: %v", err)}
	}
	minted, err := s.ledger.MintedBy(addr)
	if err != nil {
		return nil, ledgerError(err)
	}

	items := make([]uint64, len(ids))
	for i, id := range ids {
		items[i] = uint64(id)
	}
	return &ItemsResult{Address: addr.String(), Items: items, Minted: minted}, nil
}

// ── Account endpoints ───────────────────────────────────────────────────

func (s *Server) handleAccountGetBalance(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, rpcErr := decodeAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var bal, nonce uint64
	err := s.ledger.View(func() error {
		var err error
		if bal, err = s.accounts.Balance(addr); err != nil {
			return err
		}
		nonce, err = s.accounts.Nonce(addr)
		return err
	})
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("balance: %v", err)}
	}
	return &BalanceResult{Address: addr.String(), Balance: bal, Nonce: nonce}, nil
}

func (s *Server) handleAccountDeposit(req *Request) (interface{}, *Error) {
	var params DepositParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	to, rpcErr := decodeAddress(params.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	unsigned := params
	unsigned.Auth = nil
	caller, rpcErr := s.authorize(req.Method, &unsigned, params.Auth)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := s.ledger.Deposit(caller, to, params.Amount); err != nil {
		return nil, ledgerError(err)
	}
	return &AmountResult{Amount: params.Amount}, nil
}

func decodeAddress(s string) (types.Address, *Error) {
	addr, err := types.ParseAddress(s)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "invalid address: " + err.Error()}
	}
	return addr, nil
}
