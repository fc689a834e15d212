package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/ledger"
	klog "github.com/Korku-S16/Web3BuildersERC-721A/internal/log"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/payout"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/registry"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/crypto"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// testClock is a settable clock shared with the server goroutines.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// buyerFunds is what the test buyer's account starts with.
const buyerFunds = 10 * config.DefaultPrice

// testEnv holds all components for an RPC test.
type testEnv struct {
	server   *Server
	ownerKey *crypto.PrivateKey
	buyerKey *crypto.PrivateKey
	terms    *config.Terms
	clock    *testClock
	url      string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupTestEnvWithConfig(t, config.RPCConfig{})
}

func setupTestEnvWithConfig(t *testing.T, rpcCfg config.RPCConfig) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	ownerKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	buyerKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	terms := config.DefaultTerms(ownerKey.Address())
	stack := storage.NewTxStack(storage.NewMemory())
	reg := registry.New(storage.NewPrefixDB(stack, []byte("registry/")))
	acc := payout.NewAccounts(storage.NewPrefixDB(stack, []byte("payout/")))
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}

	l, err := ledger.New(terms, stack, reg, acc, clock)
	if err != nil {
		t.Fatalf("create ledger: %v", err)
	}
	if err := acc.Send(buyerKey.Address(), buyerFunds); err != nil {
		t.Fatalf("fund buyer: %v", err)
	}

	// Create and start RPC server on random port.
	srv := New("127.0.0.1:0", ledger.NewService(l), reg, acc, rpcCfg)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server:   srv,
		ownerKey: ownerKey,
		buyerKey: buyerKey,
		terms:    terms,
		clock:    clock,
		url:      fmt.Sprintf("http://%s/", srv.Addr()),
	}
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

func decodeResult(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func expectError(t *testing.T, resp Response, code int, reason string) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("error code = %d (%s), want %d", resp.Error.Code, resp.Error.Message, code)
	}
	if reason != "" && resp.Error.Data != reason {
		t.Errorf("error data = %v, want %q", resp.Error.Data, reason)
	}
}

func (env *testEnv) account(t *testing.T, addr types.Address) BalanceResult {
	t.Helper()
	var bal BalanceResult
	decodeResult(t, rpcCall(t, env.url, "account_getBalance", AddressParam{Address: addr.String()}), &bal)
	return bal
}

// sign signs unsigned for method at key's current nonce.
func (env *testEnv) sign(t *testing.T, key *crypto.PrivateKey, method string, unsigned interface{}) *Auth {
	t.Helper()
	auth, err := Sign(key, method, env.account(t, key.Address()).Nonce, unsigned)
	if err != nil {
		t.Fatal(err)
	}
	return auth
}

func (env *testEnv) signedMint(t *testing.T, key *crypto.PrivateKey, quantity, paid uint64) MintParam {
	t.Helper()
	p := MintParam{Quantity: quantity, Paid: paid}
	p.Auth = env.sign(t, key, "ledger_mint", &p)
	return p
}

func (env *testEnv) signedRefund(t *testing.T, key *crypto.PrivateKey, id uint64) RefundParam {
	t.Helper()
	p := RefundParam{ItemID: id}
	p.Auth = env.sign(t, key, "ledger_refund", &p)
	return p
}

func (env *testEnv) signedWithdraw(t *testing.T, key *crypto.PrivateKey) WithdrawParam {
	t.Helper()
	return WithdrawParam{Auth: env.sign(t, key, "ledger_withdraw", &WithdrawParam{})}
}

func (env *testEnv) signedDeposit(t *testing.T, key *crypto.PrivateKey, to types.Address, amount uint64) DepositParam {
	t.Helper()
	p := DepositParam{To: to.String(), Amount: amount}
	p.Auth = env.sign(t, key, "account_deposit", &p)
	return p
}

// ── Tests ───────────────────────────────────────────────────────────────

func TestRPC_LedgerGetInfo(t *testing.T) {
	env := setupTestEnv(t)

	var result InfoResult
	decodeResult(t, rpcCall(t, env.url, "ledger_getInfo", nil), &result)

	if result.Owner != env.ownerKey.Address().String() {
		t.Errorf("owner = %s", result.Owner)
	}
	if result.Price != config.DefaultPrice || result.MaxSupply != 100 || result.MaxPerBuyer != 3 {
		t.Errorf("terms = %+v", result)
	}
	if result.RefundPeriod != 180 {
		t.Errorf("refund period = %d", result.RefundPeriod)
	}
	digest, _ := env.terms.Digest()
	if result.TermsDigest != digest.String() {
		t.Errorf("terms digest = %s, want %s", result.TermsDigest, digest)
	}
	if !result.Withdrawable {
		t.Error("empty ledger should be withdrawable")
	}
}

func TestRPC_MintAndQuery(t *testing.T) {
	env := setupTestEnv(t)
	buyer := env.buyerKey.Address()

	var minted MintResult
	decodeResult(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 2, 2*config.DefaultPrice)), &minted)
	if minted.First != 0 || minted.Count != 2 {
		t.Errorf("minted = %+v", minted)
	}
	if minted.Buyer != buyer.String() {
		t.Errorf("buyer = %s, want %s", minted.Buyer, buyer)
	}
	if minted.Deadline != 1_700_000_000+180 {
		t.Errorf("deadline = %d", minted.Deadline)
	}

	var holder HolderResult
	decodeResult(t, rpcCall(t, env.url, "item_holderOf", ItemParam{ItemID: 1}), &holder)
	if holder.Holder != buyer.String() {
		t.Errorf("holder = %s", holder.Holder)
	}

	var items ItemsResult
	decodeResult(t, rpcCall(t, env.url, "item_listByHolder", AddressParam{Address: buyer.String()}), &items)
	if len(items.Items) != 2 || items.Minted != 2 {
		t.Errorf("items = %+v", items)
	}

	var deadline DeadlineResult
	decodeResult(t, rpcCall(t, env.url, "ledger_quoteDeadline", ItemParam{ItemID: 0}), &deadline)
	if deadline.Deadline != minted.Deadline || deadline.Status != "open" {
		t.Errorf("deadline = %+v", deadline)
	}

	var amount AmountResult
	decodeResult(t, rpcCall(t, env.url, "ledger_quoteAmount", ItemParam{ItemID: 0}), &amount)
	if amount.Amount != config.DefaultPrice {
		t.Errorf("quote amount = %d", amount.Amount)
	}
}

func TestRPC_Mint_Unauthorized(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "ledger_mint", MintParam{Quantity: 1, Paid: config.DefaultPrice})
	expectError(t, resp, CodeUnauthorized, "")

	// A signature over different params does not verify.
	p := env.signedMint(t, env.buyerKey, 1, config.DefaultPrice)
	p.Quantity = 3
	expectError(t, rpcCall(t, env.url, "ledger_mint", p), CodeUnauthorized, "")

	// Nor does one made for another method.
	q := MintParam{Quantity: 1, Paid: config.DefaultPrice}
	auth, _ := Sign(env.buyerKey, "ledger_refund", 0, &q)
	q.Auth = auth
	expectError(t, rpcCall(t, env.url, "ledger_mint", q), CodeUnauthorized, "")

	var info InfoResult
	decodeResult(t, rpcCall(t, env.url, "ledger_getInfo", nil), &info)
	if info.TotalIssued != 0 {
		t.Errorf("rejected mints issued %d items", info.TotalIssued)
	}
	// Requests that fail authentication do not spend the nonce.
	if n := env.account(t, env.buyerKey.Address()).Nonce; n != 0 {
		t.Errorf("nonce = %d after unauthenticated requests", n)
	}
}

func TestRPC_Mint_Rejections(t *testing.T) {
	env := setupTestEnv(t)

	expectError(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 1, 1)),
		CodeLedgerRejected, "insufficient_payment")
	expectError(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 0, 0)),
		CodeLedgerRejected, "invalid_quantity")

	// An asserted payment the signer's account cannot cover is refused.
	poor, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	expectError(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, poor, 1, 1_000*config.DefaultPrice)),
		CodeLedgerRejected, "payment_failed")

	decodeResult(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 3, 3*config.DefaultPrice)), &MintResult{})
	expectError(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 1, config.DefaultPrice)),
		CodeLedgerRejected, "per_buyer_limit_exceeded")
}

func TestRPC_RefundFlow(t *testing.T) {
	env := setupTestEnv(t)
	buyer := env.buyerKey.Address()
	decodeResult(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 1, config.DefaultPrice)), &MintResult{})

	// Only the holder can refund.
	expectError(t, rpcCall(t, env.url, "ledger_refund", env.signedRefund(t, env.ownerKey, 0)),
		CodeLedgerRejected, "not_holder")

	env.clock.advance(time.Minute)
	var refunded AmountResult
	decodeResult(t, rpcCall(t, env.url, "ledger_refund", env.signedRefund(t, env.buyerKey, 0)), &refunded)
	if refunded.Amount != config.DefaultPrice {
		t.Errorf("refund = %d", refunded.Amount)
	}

	if bal := env.account(t, buyer).Balance; bal != buyerFunds {
		t.Errorf("buyer balance = %d, want %d", bal, buyerFunds)
	}

	var holder HolderResult
	decodeResult(t, rpcCall(t, env.url, "item_holderOf", ItemParam{ItemID: 0}), &holder)
	if holder.Holder != env.ownerKey.Address().String() {
		t.Errorf("holder after refund = %s", holder.Holder)
	}

	expectError(t, rpcCall(t, env.url, "ledger_refund", env.signedRefund(t, env.buyerKey, 0)),
		CodeLedgerRejected, "already_refunded")

	var deadline DeadlineResult
	decodeResult(t, rpcCall(t, env.url, "ledger_quoteDeadline", ItemParam{ItemID: 0}), &deadline)
	if deadline.Deadline != 0 || deadline.Status != "settled" {
		t.Errorf("deadline after refund = %+v", deadline)
	}
}

func TestRPC_Refund_WindowClosed(t *testing.T) {
	env := setupTestEnv(t)
	decodeResult(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 1, config.DefaultPrice)), &MintResult{})

	env.clock.advance(3 * time.Minute)
	expectError(t, rpcCall(t, env.url, "ledger_refund", env.signedRefund(t, env.buyerKey, 0)),
		CodeLedgerRejected, "window_closed")
}

func TestRPC_WithdrawFlow(t *testing.T) {
	env := setupTestEnv(t)
	decodeResult(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, env.buyerKey, 2, 2*config.DefaultPrice)), &MintResult{})

	expectError(t, rpcCall(t, env.url, "ledger_withdraw", env.signedWithdraw(t, env.buyerKey)),
		CodeLedgerRejected, "not_owner")
	expectError(t, rpcCall(t, env.url, "ledger_withdraw", env.signedWithdraw(t, env.ownerKey)),
		CodeLedgerRejected, "refund_horizon_not_elapsed")

	env.clock.advance(4 * time.Minute)
	var withdrawn AmountResult
	decodeResult(t, rpcCall(t, env.url, "ledger_withdraw", env.signedWithdraw(t, env.ownerKey)), &withdrawn)
	if withdrawn.Amount != 2*config.DefaultPrice {
		t.Errorf("withdrawn = %d", withdrawn.Amount)
	}

	if bal := env.account(t, env.ownerKey.Address()).Balance; bal != 2*config.DefaultPrice {
		t.Errorf("owner balance = %d", bal)
	}
	if bal := env.account(t, env.buyerKey.Address()).Balance; bal != buyerFunds-2*config.DefaultPrice {
		t.Errorf("buyer balance = %d", bal)
	}
}

func TestRPC_ReplayRejected(t *testing.T) {
	env := setupTestEnv(t)
	buyer := env.buyerKey.Address()

	p := env.signedMint(t, env.buyerKey, 1, config.DefaultPrice)
	decodeResult(t, rpcCall(t, env.url, "ledger_mint", p), &MintResult{})
	expectError(t, rpcCall(t, env.url, "ledger_mint", p), CodeUnauthorized, "stale_nonce")

	acct := env.account(t, buyer)
	if acct.Nonce != 1 {
		t.Errorf("nonce = %d, want 1", acct.Nonce)
	}
	if acct.Balance != buyerFunds-config.DefaultPrice {
		t.Errorf("replay charged the buyer again: balance %d", acct.Balance)
	}
	var info InfoResult
	decodeResult(t, rpcCall(t, env.url, "ledger_getInfo", nil), &info)
	if info.TotalIssued != 1 {
		t.Errorf("issued = %d after replay", info.TotalIssued)
	}

	// A request the ledger rejects still spends its nonce.
	r := env.signedRefund(t, env.buyerKey, 7)
	expectError(t, rpcCall(t, env.url, "ledger_refund", r), CodeNotFound, "")
	expectError(t, rpcCall(t, env.url, "ledger_refund", r), CodeUnauthorized, "stale_nonce")
	if n := env.account(t, buyer).Nonce; n != 2 {
		t.Errorf("nonce = %d, want 2", n)
	}

	// A request signed for a future nonce is refused too.
	q := MintParam{Quantity: 1, Paid: config.DefaultPrice}
	q.Auth, _ = Sign(env.buyerKey, "ledger_mint", 5, &q)
	expectError(t, rpcCall(t, env.url, "ledger_mint", q), CodeUnauthorized, "stale_nonce")
}

func TestRPC_Deposit(t *testing.T) {
	env := setupTestEnv(t)
	fresh, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	to := fresh.Address()

	expectError(t, rpcCall(t, env.url, "account_deposit", env.signedDeposit(t, env.buyerKey, to, config.DefaultPrice)),
		CodeLedgerRejected, "not_owner")
	expectError(t, rpcCall(t, env.url, "account_deposit", env.signedDeposit(t, env.ownerKey, to, 0)),
		CodeLedgerRejected, "invalid_amount")
	bad := DepositParam{To: "0x12", Amount: 1}
	bad.Auth = env.sign(t, env.ownerKey, "account_deposit", &DepositParam{To: "0x12", Amount: 1})
	expectError(t, rpcCall(t, env.url, "account_deposit", bad), CodeInvalidParams, "")

	var res AmountResult
	decodeResult(t, rpcCall(t, env.url, "account_deposit", env.signedDeposit(t, env.ownerKey, to, config.DefaultPrice)), &res)
	if res.Amount != config.DefaultPrice {
		t.Errorf("deposited = %d", res.Amount)
	}
	if bal := env.account(t, to).Balance; bal != config.DefaultPrice {
		t.Errorf("balance = %d", bal)
	}

	// The funded key can now buy.
	decodeResult(t, rpcCall(t, env.url, "ledger_mint", env.signedMint(t, fresh, 1, config.DefaultPrice)), &MintResult{})
	if bal := env.account(t, to).Balance; bal != 0 {
		t.Errorf("balance after mint = %d", bal)
	}
}

func TestRPC_UnknownItem(t *testing.T) {
	env := setupTestEnv(t)

	expectError(t, rpcCall(t, env.url, "ledger_quoteDeadline", ItemParam{ItemID: 9}), CodeNotFound, "")
	expectError(t, rpcCall(t, env.url, "ledger_quoteAmount", ItemParam{ItemID: 9}), CodeNotFound, "")
	expectError(t, rpcCall(t, env.url, "item_holderOf", ItemParam{ItemID: 9}), CodeNotFound, "")
	expectError(t, rpcCall(t, env.url, "ledger_refund", env.signedRefund(t, env.buyerKey, 9)), CodeNotFound, "")
}

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)
	expectError(t, rpcCall(t, env.url, "chain_getInfo", nil), CodeMethodNotFound, "")
}

func TestRPC_InvalidParams(t *testing.T) {
	env := setupTestEnv(t)
	expectError(t, rpcCall(t, env.url, "item_holderOf", nil), CodeInvalidParams, "")
	expectError(t, rpcCall(t, env.url, "item_holderOf", map[string]string{"item_id": "x"}), CodeInvalidParams, "")
}

func TestRPC_InvalidAddress(t *testing.T) {
	env := setupTestEnv(t)
	expectError(t, rpcCall(t, env.url, "account_getBalance", AddressParam{Address: "0x1234"}), CodeInvalidParams, "")
}

func TestRPC_InvalidAuthEncoding(t *testing.T) {
	env := setupTestEnv(t)
	p := MintParam{Quantity: 1, Paid: config.DefaultPrice, Auth: &Auth{PubKey: "zz", Signature: "00"}}
	expectError(t, rpcCall(t, env.url, "ledger_mint", p), CodeInvalidParams, "")
}

func TestRPC_InvalidJSON(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Post(env.url, "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	expectError(t, rpcResp, CodeParseError, "")
}

func TestRPC_GetMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	expectError(t, rpcResp, CodeInvalidRequest, "")
}

func TestRPC_BodySizeLimit(t *testing.T) {
	env := setupTestEnv(t)

	big := bytes.Repeat([]byte("a"), maxBodySize+10)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(big))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	expectError(t, rpcResp, CodeInvalidRequest, "")
}

// --- IP filter ---

func TestRPC_IPFilter_Allowed(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"127.0.0.1"},
	})

	resp := rpcCall(t, env.url, "ledger_getInfo", nil)
	if resp.Error != nil {
		t.Errorf("expected success for 127.0.0.1, got error: %s", resp.Error.Message)
	}
}

func TestRPC_IPFilter_Blocked(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"10.0.0.0/8"}, // Only allow 10.x.x.x.
	})

	req := Request{JSONRPC: "2.0", Method: "ledger_getInfo", ID: 1}
	body, _ := json.Marshal(req)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

// --- CORS ---

func TestRPC_CORS_SpecificOrigin(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		CORSOrigins: []string{"http://myapp.com"},
	})

	post := func(origin string) *http.Response {
		req := Request{JSONRPC: "2.0", Method: "ledger_getInfo", ID: 1}
		body, _ := json.Marshal(req)
		httpReq, _ := http.NewRequest("POST", env.url, bytes.NewReader(body))
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Origin", origin)
		resp, err := http.DefaultClient.Do(httpReq)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		return resp
	}

	resp := post("http://myapp.com")
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://myapp.com" {
		t.Errorf("CORS origin = %q, want %q", got, "http://myapp.com")
	}

	resp = post("http://evil.com")
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("non-matching origin should have no CORS header, got %q", got)
	}
}

func TestRPC_CORS_Preflight(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		CORSOrigins: []string{"*"},
	})

	httpReq, _ := http.NewRequest("OPTIONS", env.url, nil)
	httpReq.Header.Set("Origin", "http://example.com")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Errorf("allow methods = %q", got)
	}
}

func TestLedgerError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		code   int
		reason interface{}
	}{
		{fmt.Errorf("wrap: %w", ledger.ErrAlreadyRefunded), CodeLedgerRejected, "already_refunded"},
		{ledger.ErrWindowClosed, CodeLedgerRejected, "window_closed"},
		{fmt.Errorf("%w: 3", ledger.ErrItemNotFound), CodeNotFound, nil},
		{fmt.Errorf("%w: x", ledger.ErrTransferFailed), CodeLedgerRejected, "transfer_failed"},
		{fmt.Errorf("%w: %w", ledger.ErrPaymentFailed, payout.ErrInsufficientBalance), CodeLedgerRejected, "payment_failed"},
		{ledger.ErrPaymentOverflow, CodeLedgerRejected, "payment_overflow"},
		{ledger.ErrInvalidAmount, CodeLedgerRejected, "invalid_amount"},
		{fmt.Errorf("disk on fire"), CodeInternalError, nil},
	}
	for _, tt := range tests {
		got := ledgerError(tt.err)
		if got.Code != tt.code || got.Data != tt.reason {
			t.Errorf("ledgerError(%v) = %d/%v, want %d/%v", tt.err, got.Code, got.Data, tt.code, tt.reason)
		}
	}
}

func TestSigningHash_BindsMethodNonceAndParams(t *testing.T) {
	a, err := SigningHash("ledger_refund", 0, &RefundParam{ItemID: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := SigningHash("ledger_refund", 0, &RefundParam{ItemID: 2})
	c, _ := SigningHash("ledger_mint", 0, &RefundParam{ItemID: 1})
	d, _ := SigningHash("ledger_refund", 1, &RefundParam{ItemID: 1})
	if a == b || a == c || a == d {
		t.Error("signing hash must change with params, method and nonce")
	}
	var zero types.Hash
	if a == zero {
		t.Error("zero signing hash")
	}
}
