package rpcclient

import (
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/rpc"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/crypto"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// sign fetches the signer's next nonce and signs unsigned for method.
func (c *Client) sign(signer crypto.Signer, method string, unsigned interface{}) (*rpc.Auth, error) {
	nonce, err := c.Nonce(crypto.AddressFromPubKey(signer.PublicKey()))
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}
	auth, err := rpc.Sign(signer, method, nonce, unsigned)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return auth, nil
}

// Mint buys quantity items as the signer's address. paid is the most the
// signer agrees to pay; the ledger charges the exact cost.
func (c *Client) Mint(signer crypto.Signer, quantity, paid uint64) (*rpc.MintResult, error) {
	params := rpc.MintParam{Quantity: quantity, Paid: paid}
	auth, err := c.sign(signer, "ledger_mint", &params)
	if err != nil {
		return nil, err
	}
	params.Auth = auth

	var result rpc.MintResult
	if err := c.Call("ledger_mint", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refund returns item id on behalf of the signer.
func (c *Client) Refund(signer crypto.Signer, id types.ItemID) (uint64, error) {
	params := rpc.RefundParam{ItemID: uint64(id)}
	auth, err := c.sign(signer, "ledger_refund", &params)
	if err != nil {
		return 0, err
	}
	params.Auth = auth

	var result rpc.AmountResult
	if err := c.Call("ledger_refund", params, &result); err != nil {
		return 0, err
	}
	return result.Amount, nil
}

// Withdraw sweeps the treasury; the signer must be the owner.
func (c *Client) Withdraw(signer crypto.Signer) (uint64, error) {
	auth, err := c.sign(signer, "ledger_withdraw", &rpc.WithdrawParam{})
	if err != nil {
		return 0, err
	}

	var result rpc.AmountResult
	if err := c.Call("ledger_withdraw", rpc.WithdrawParam{Auth: auth}, &result); err != nil {
		return 0, err
	}
	return result.Amount, nil
}

// Deposit funds the account of to; the signer must be the owner.
func (c *Client) Deposit(signer crypto.Signer, to types.Address, amount uint64) error {
	params := rpc.DepositParam{To: to.String(), Amount: amount}
	auth, err := c.sign(signer, "account_deposit", &params)
	if err != nil {
		return err
	}
	params.Auth = auth
	return c.Call("account_deposit", params, &rpc.AmountResult{})
}

// Info returns the sale terms and counters.
func (c *Client) Info() (*rpc.InfoResult, error) {
	var result rpc.InfoResult
	if err := c.Call("ledger_getInfo", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QuoteDeadline returns the refund deadline and status of id.
func (c *Client) QuoteDeadline(id types.ItemID) (*rpc.DeadlineResult, error) {
	var result rpc.DeadlineResult
	if err := c.Call("ledger_quoteDeadline", rpc.ItemParam{ItemID: uint64(id)}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QuoteAmount returns what refunding id would pay.
func (c *Client) QuoteAmount(id types.ItemID) (uint64, error) {
	var result rpc.AmountResult
	if err := c.Call("ledger_quoteAmount", rpc.ItemParam{ItemID: uint64(id)}, &result); err != nil {
		return 0, err
	}
	return result.Amount, nil
}

// HolderOf returns the holder of id.
func (c *Client) HolderOf(id types.ItemID) (types.Address, error) {
	var result rpc.HolderResult
	if err := c.Call("item_holderOf", rpc.ItemParam{ItemID: uint64(id)}, &result); err != nil {
		return types.Address{}, err
	}
	return types.ParseAddress(result.Holder)
}

// Items lists the items addr holds.
func (c *Client) Items(addr types.Address) (*rpc.ItemsResult, error) {
	var result rpc.ItemsResult
	if err := c.Call("item_listByHolder", rpc.AddressParam{Address: addr.String()}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Account returns the balance and next nonce of addr.
func (c *Client) Account(addr types.Address) (*rpc.BalanceResult, error) {
	var result rpc.BalanceResult
	if err := c.Call("account_getBalance", rpc.AddressParam{Address: addr.String()}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Balance returns the account balance of addr.
func (c *Client) Balance(addr types.Address) (uint64, error) {
	acct, err := c.Account(addr)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Nonce returns the nonce the next signed request from addr must carry.
func (c *Client) Nonce(addr types.Address) (uint64, error) {
	acct, err := c.Account(addr)
	if err != nil {
		return 0, err
	}
	return acct.Nonce, nil
}
