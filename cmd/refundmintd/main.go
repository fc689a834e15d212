// refundmintd runs the refundable mint ledger and serves it over JSON-RPC.
//
// Usage:
//
//	refundmintd --owner=<address> [--price=<base units>]   First start
//	refundmintd                                            Run node
//	refundmintd --help                                     Show help
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/node"
)

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	n, err := node.New(cfg, node.Bootstrap{Owner: flags.Owner, Price: flags.Price})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := n.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		n.Stop()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	n.Stop()
}
