package rpc

import "github.com/Korku-S16/Web3BuildersERC-721A/internal/ledger"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeUnauthorized   = -32001
	CodeLedgerRejected = -32010
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// MintParam is used by ledger_mint. The buyer is the signer.
type MintParam struct {
	Quantity uint64 `json:"quantity"`
	Paid     uint64 `json:"paid"`
	Auth     *Auth  `json:"auth,omitempty"`
}

// RefundParam is used by ledger_refund. The caller is the signer.
type RefundParam struct {
	ItemID uint64 `json:"item_id"`
	Auth   *Auth  `json:"auth,omitempty"`
}

// WithdrawParam is used by ledger_withdraw. The caller is the signer.
type WithdrawParam struct {
	Auth *Auth `json:"auth,omitempty"`
}

// DepositParam is used by account_deposit. The caller is the signer and
// must be the owner.
type DepositParam struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Auth   *Auth  `json:"auth,omitempty"`
}

// ItemParam is used by endpoints that take a single item ID.
type ItemParam struct {
	ItemID uint64 `json:"item_id"`
}

// AddressParam is used by item_listByHolder and account_getBalance.
type AddressParam struct {
	Address string `json:"address"`
}

// ── Result types ────────────────────────────────────────────────────────

// MintResult is returned by ledger_mint.
type MintResult struct {
	Buyer    string `json:"buyer"`
	First    uint64 `json:"first"`
	Count    uint64 `json:"count"`
	Deadline uint64 `json:"deadline"`
}

// AmountResult is returned by ledger_refund, ledger_withdraw,
// ledger_quoteAmount and account_deposit.
type AmountResult struct {
	Amount uint64 `json:"amount"`
}

// DeadlineResult is returned by ledger_quoteDeadline.
type DeadlineResult struct {
	ItemID   uint64 `json:"item_id"`
	Deadline uint64 `json:"deadline"` // 0 once refunded.
	Status   string `json:"status"`
}

// InfoResult is returned by ledger_getInfo.
type InfoResult struct {
	Owner        string `json:"owner"`
	Price        uint64 `json:"price"`
	MaxPerBuyer  uint64 `json:"max_per_buyer"`
	MaxSupply    uint64 `json:"max_supply"`
	RefundPeriod uint64 `json:"refund_period_secs"`
	TermsDigest  string `json:"terms_digest"`
	TotalIssued  uint64 `json:"total_issued"`
	Horizon      uint64 `json:"horizon"`
	Treasury     uint64 `json:"treasury"`
	Now          uint64 `json:"now"`
	Withdrawable bool   `json:"withdrawable"`
}

// HolderResult is returned by item_holderOf.
type HolderResult struct {
	ItemID uint64 `json:"item_id"`
	Holder string `json:"holder"`
}

// ItemsResult is returned by item_listByHolder.
type ItemsResult struct {
	Address string   `json:"address"`
	Items   []uint64 `json:"items"`
	Minted  uint64   `json:"minted"` // Lifetime mints, refunds included.
}

// BalanceResult is returned by account_getBalance.
type BalanceResult struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"` // Nonce the next signed request must carry.
}

func newInfoResult(info *ledger.Info, digest string) *InfoResult {
	return &InfoResult{
		Owner:        info.Terms.Owner.String(),
		Price:        info.Terms.Price,
		MaxPerBuyer:  info.Terms.MaxPerBuyer,
		MaxSupply:    info.Terms.MaxSupply,
		RefundPeriod: info.Terms.RefundPeriodSecs,
		TermsDigest:  digest,
		TotalIssued:  info.TotalIssued,
		Horizon:      info.Horizon,
		Treasury:     info.Treasury,
		Now:          info.Now,
		Withdrawable: info.Withdrawable,
	}
}
