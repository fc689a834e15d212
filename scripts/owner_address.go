// owner_address.go prints the ledger addresses of a mnemonic, e.g. to pick
// the --owner for a node's first start.
// Usage: go run scripts/owner_address.go "<mnemonic>" [count]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/wallet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: owner_address \"<mnemonic>\" [count]")
		os.Exit(1)
	}
	count := uint64(1)
	if len(os.Args) > 2 {
		n, err := strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil || n == 0 {
			fmt.Fprintln(os.Stderr, "count must be a positive integer")
			os.Exit(1)
		}
		count = n
	}

	seed, err := wallet.SeedFromMnemonic(os.Args[1], "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for i := uint64(0); i < count; i++ {
		addr, err := wallet.DeriveAddress(seed, uint32(i))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("[%d] %s\n", i, addr)
	}
}
