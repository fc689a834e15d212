// refundmint-cli is a command-line client for a refundmintd node.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/rpcclient"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	def := config.Default()
	rpcURL := "http://" + def.RPCEndpoint()
	dataDir := def.DataDir

	// Global flags come before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg := &config.Config{DataDir: dataDir}
	ksDir := cfg.KeystoreDir()
	client := rpcclient.New(rpcURL)
	cmdArgs := args[1:]

	switch args[0] {
	case "info":
		cmdInfo(client)
	case "mint":
		cmdMint(client, cmdArgs, ksDir)
	case "refund":
		cmdRefund(client, cmdArgs, ksDir)
	case "withdraw":
		cmdWithdraw(client, cmdArgs, ksDir)
	case "deadline":
		cmdDeadline(client, cmdArgs)
	case "amount":
		cmdAmount(client, cmdArgs)
	case "holder":
		cmdHolder(client, cmdArgs)
	case "items":
		cmdItems(client, cmdArgs)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "deposit":
		cmdDeposit(client, cmdArgs, ksDir)
	case "wallet":
		cmdWallet(cmdArgs, ksDir)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: refundmint-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8721)
  --datadir <path>    Data directory holding the keystore (default: ~/.refundmint)

Commands:
  info                            Show sale terms and counters
  mint --wallet <w> --quantity <n> [--paid <amt>] [--account <i>]
                                  Buy items (paid caps the charge; defaults to price * quantity)
  refund --wallet <w> --item <id> [--account <i>]
                                  Return an item within its refund window
  withdraw --wallet <w> [--account <i>]
                                  Sweep the treasury (owner, after the horizon)
  deadline <id>                   Show an item's refund deadline and status
  amount <id>                     Show what refunding an item pays
  holder <id>                     Show an item's holder
  items <address>                 List items held by an address
  balance <address>               Show an account's balance and next nonce
  deposit --wallet <w> --to <addr> --amount <amt> [--account <i>]
                                  Fund an account (owner only)

  wallet create --name <n>        Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                  Import a wallet from a mnemonic
  wallet list                     List wallets
  wallet address --wallet <w>     List wallet addresses
  wallet new-address --wallet <w> [--label <l>]
                                  Derive the next address
`)
}

// ── read-only queries ───────────────────────────────────────────────────

func cmdInfo(client *rpcclient.Client) {
	info, err := client.Info()
	if err != nil {
		fatalRPC("ledger_getInfo", err)
	}
	fmt.Printf("Owner:          %s\n", info.Owner)
	fmt.Printf("Price:          %s\n", formatAmount(info.Price))
	fmt.Printf("Max per buyer:  %d\n", info.MaxPerBuyer)
	fmt.Printf("Supply:         %d / %d\n", info.TotalIssued, info.MaxSupply)
	fmt.Printf("Refund period:  %s\n", time.Duration(info.RefundPeriod)*time.Second)
	fmt.Printf("Treasury:       %s\n", formatAmount(info.Treasury))
	fmt.Printf("Horizon:        %s\n", formatDeadline(info.Horizon, time.Unix(int64(info.Now), 0)))
	fmt.Printf("Withdrawable:   %v\n", info.Withdrawable)
	fmt.Printf("Terms digest:   %s\n", info.TermsDigest)
}

func cmdDeadline(client *rpcclient.Client, args []string) {
	id := itemArg("deadline", args)
	res, err := client.QuoteDeadline(id)
	if err != nil {
		fatalRPC("ledger_quoteDeadline", err)
	}
	fmt.Printf("Item:      %d\n", res.ItemID)
	fmt.Printf("Status:    %s\n", res.Status)
	fmt.Printf("Deadline:  %s\n", formatDeadline(res.Deadline, time.Now()))
}

func cmdAmount(client *rpcclient.Client, args []string) {
	id := itemArg("amount", args)
	amount, err := client.QuoteAmount(id)
	if err != nil {
		fatalRPC("ledger_quoteAmount", err)
	}
	fmt.Printf("Refund amount for item %d: %s\n", id, formatAmount(amount))
}

func cmdHolder(client *rpcclient.Client, args []string) {
	id := itemArg("holder", args)
	holder, err := client.HolderOf(id)
	if err != nil {
		fatalRPC("item_holderOf", err)
	}
	fmt.Printf("Item %d is held by %s\n", id, holder)
}

func cmdItems(client *rpcclient.Client, args []string) {
	addr := addressArg("items", args)
	res, err := client.Items(addr)
	if err != nil {
		fatalRPC("item_listByHolder", err)
	}
	fmt.Printf("Address:  %s\n", res.Address)
	fmt.Printf("Minted:   %d\n", res.Minted)
	if len(res.Items) == 0 {
		fmt.Println("Items:    none")
		return
	}
	ids := make([]string, len(res.Items))
	for i, id := range res.Items {
		ids[i] = strconv.FormatUint(id, 10)
	}
	fmt.Printf("Items:    %s\n", strings.Join(ids, ", "))
}

func cmdBalance(client *rpcclient.Client, args []string) {
	addr := addressArg("balance", args)
	acct, err := client.Account(addr)
	if err != nil {
		fatalRPC("account_getBalance", err)
	}
	fmt.Printf("Address:  %s\n", acct.Address)
	fmt.Printf("Balance:  %s\n", formatAmount(acct.Balance))
	fmt.Printf("Nonce:    %d\n", acct.Nonce)
}

// ── signed calls ────────────────────────────────────────────────────────

func cmdMint(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Address slot")
	quantity := fs.Uint64("quantity", 0, "Items to mint")
	paidStr := fs.String("paid", "", "Amount paid (default: price * quantity)")
	fs.Parse(args)

	if *name == "" || *quantity == 0 {
		fatal("Usage: refundmint-cli mint --wallet <w> --quantity <n> [--paid <amt>] [--account <i>]")
	}

	var paid uint64
	if *paidStr != "" {
		var err error
		if paid, err = parseAmount(*paidStr); err != nil {
			fatal("invalid --paid: %v", err)
		}
	} else {
		info, err := client.Info()
		if err != nil {
			fatalRPC("ledger_getInfo", err)
		}
		if *quantity > info.MaxSupply {
			fatal("quantity %d exceeds max supply %d", *quantity, info.MaxSupply)
		}
		paid = info.Price * *quantity
	}

	key := loadSigner(ksDir, *name, uint32(*account))
	defer key.Zero()

	res, err := client.Mint(key, *quantity, paid)
	if err != nil {
		fatalRPC("ledger_mint", err)
	}
	fmt.Printf("Minted %d item(s) to %s\n", res.Count, res.Buyer)
	fmt.Printf("Item IDs:        %d..%d\n", res.First, res.First+res.Count-1)
	fmt.Printf("Refund deadline: %s\n", formatDeadline(res.Deadline, time.Now()))
}

func cmdRefund(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("refund", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Address slot")
	item := fs.String("item", "", "Item ID")
	fs.Parse(args)

	if *name == "" || *item == "" {
		fatal("Usage: refundmint-cli refund --wallet <w> --item <id> [--account <i>]")
	}
	id := itemArg("refund", []string{*item})

	key := loadSigner(ksDir, *name, uint32(*account))
	defer key.Zero()

	amount, err := client.Refund(key, id)
	if err != nil {
		fatalRPC("ledger_refund", err)
	}
	fmt.Printf("Refunded item %d: %s credited to %s\n", id, formatAmount(amount), key.Address())
}

func cmdWithdraw(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("withdraw", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Address slot")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: refundmint-cli withdraw --wallet <w> [--account <i>]")
	}

	key := loadSigner(ksDir, *name, uint32(*account))
	defer key.Zero()

	amount, err := client.Withdraw(key)
	if err != nil {
		fatalRPC("ledger_withdraw", err)
	}
	if amount == 0 {
		fmt.Println("Treasury is empty; nothing withdrawn")
		return
	}
	fmt.Printf("Withdrew %s to %s\n", formatAmount(amount), key.Address())
}

func cmdDeposit(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("deposit", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Address slot")
	toStr := fs.String("to", "", "Address to fund")
	amountStr := fs.String("amount", "", "Amount to credit")
	fs.Parse(args)

	if *name == "" || *toStr == "" || *amountStr == "" {
		fatal("Usage: refundmint-cli deposit --wallet <w> --to <addr> --amount <amt> [--account <i>]")
	}
	to := addressArg("deposit", []string{*toStr})
	amount, err := parseAmount(*amountStr)
	if err != nil {
		fatal("invalid --amount: %v", err)
	}

	key := loadSigner(ksDir, *name, uint32(*account))
	defer key.Zero()

	if err := client.Deposit(key, to, amount); err != nil {
		fatalRPC("account_deposit", err)
	}
	fmt.Printf("Credited %s to %s\n", formatAmount(amount), to)
}

// ── argument helpers ────────────────────────────────────────────────────

func itemArg(cmd string, args []string) types.ItemID {
	if len(args) < 1 {
		fatal("Usage: refundmint-cli %s <item_id>", cmd)
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fatal("invalid item id %q", args[0])
	}
	return types.ItemID(id)
}

func addressArg(cmd string, args []string) types.Address {
	if len(args) < 1 {
		fatal("Usage: refundmint-cli %s <address>", cmd)
	}
	addr, err := types.ParseAddress(args[0])
	if err != nil {
		fatal("invalid address: %v", err)
	}
	return addr
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── error helpers ───────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func fatalRPC(method string, err error) {
	var rpcErr *rpcclient.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Reason != "" {
		fatal("%s rejected (%s): %s", method, rpcErr.Reason, rpcErr.Message)
	}
	fatal("%s: %v", method, err)
}
