package main

import (
	"flag"
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/wallet"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/crypto"
)

const walletUsage = "Usage: refundmint-cli wallet <create|import|list|address|new-address> [flags]"

func cmdWallet(args []string, ksDir string) {
	if len(args) < 1 {
		fatal(walletUsage)
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(args[1:], ksDir)
	case "import":
		cmdWalletImport(args[1:], ksDir)
	case "list":
		cmdWalletList(ksDir)
	case "address":
		cmdWalletAddress(args[1:], ksDir)
	case "new-address":
		cmdWalletNewAddress(args[1:], ksDir)
	default:
		fatal("Unknown wallet command: %s\n%s", args[0], walletUsage)
	}
}

func cmdWalletCreate(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: refundmint-cli wallet create --name <name>")
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}
	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	storeWallet(ksDir, *name, mnemonic)
}

func cmdWalletImport(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: refundmint-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	storeWallet(ksDir, *name, *mnemonic)
}

// storeWallet prompts for a password and writes the wallet for mnemonic.
func storeWallet(ksDir, name, mnemonic string) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	defer clear(seed)

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	addr, err := ks.Create(name, seed, password, wallet.DefaultParams())
	if err != nil {
		fatal("create wallet: %v", err)
	}

	fmt.Printf("Wallet saved: %s\n", name)
	fmt.Printf("Address: %s\n", addr)
}

func cmdWalletList(ksDir string) {
	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets found")
		return
	}
	for _, n := range names {
		fmt.Println(n)
	}
}

func cmdWalletAddress(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet address", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: refundmint-cli wallet address --wallet <name>")
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	accts, err := ks.Accounts(*name)
	if err != nil {
		fatal("%v", err)
	}
	for _, a := range accts {
		fmt.Printf("  [%d] %-12s %s\n", a.Index, a.Name, a.Address)
	}
}

func cmdWalletNewAddress(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet new-address", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	label := fs.String("label", "", "Account label")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: refundmint-cli wallet new-address --wallet <name> [--label <label>]")
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	password, err := readPassword("Wallet password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	entry, err := ks.NewAccount(*name, password, *label)
	if err != nil {
		fatal("derive address: %v", err)
	}
	fmt.Printf("[%d] %s %s\n", entry.Index, entry.Name, entry.Address)
}

// loadSigner prompts for the wallet password and derives the key at slot.
func loadSigner(ksDir, name string, slot uint32) *crypto.PrivateKey {
	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	password, err := readPassword("Wallet password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	key, err := ks.Signer(name, password, slot)
	if err != nil {
		fatal("%v", err)
	}
	return key
}
