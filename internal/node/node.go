// Package node wires storage, the ledger and the RPC server into one
// process that can be embedded in any binary.
package node

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/ledger"
	klog "github.com/Korku-S16/Web3BuildersERC-721A/internal/log"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/payout"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/registry"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/rpc"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/rs/zerolog"
)

// Namespaces of the collaborators sharing the ledger's transaction stack.
var (
	RegistryPrefix = []byte("registry/")
	PayoutPrefix   = []byte("payout/")
)

// Bootstrap holds the terms overrides used when no terms file exists yet.
type Bootstrap struct {
	Owner string // Hex address; required on first start.
	Price uint64 // Zero keeps config.DefaultPrice.
}

// Node is a fully initialized refundmint node.
type Node struct {
	cfg    *config.Config
	terms  *config.Terms
	logger zerolog.Logger

	db      storage.DB
	service *ledger.Service

	rpcServer *rpc.Server
}

// New performs all setup (logger, terms, storage, ledger, RPC) but does not
// bind the RPC listener. Call Start for that.
func New(cfg *config.Config, boot Bootstrap) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		if err := os.MkdirAll(cfg.LogsDir(), 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(cfg.LogsDir(), "refundmint.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	// ── 2. Terms ────────────────────────────────────────────────────
	terms, created, err := resolveTerms(cfg.TermsPath(), boot)
	if err != nil {
		return nil, err
	}
	digest, err := terms.Digest()
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("owner", terms.Owner.String()).
		Uint64("price", terms.Price).
		Uint64("max_supply", terms.MaxSupply).
		Uint64("max_per_buyer", terms.MaxPerBuyer).
		Dur("refund_period", terms.RefundPeriod()).
		Str("terms", digest.String()[:16]).
		Bool("created", created).
		Msg("Starting refundmint node")

	// ── 3. Open storage ─────────────────────────────────────────────
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("engine", string(cfg.Storage.Engine)).Str("path", cfg.DBDir()).Msg("Database opened")

	// ── 4. Ledger ───────────────────────────────────────────────────
	stack := storage.NewTxStack(db)
	reg := registry.New(storage.NewPrefixDB(stack, RegistryPrefix))
	acc := payout.NewAccounts(storage.NewPrefixDB(stack, PayoutPrefix))

	l, err := ledger.New(terms, stack, reg, acc, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	svc := ledger.NewService(l)

	info, err := svc.Info()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read ledger state: %w", err)
	}
	logger.Info().
		Uint64("issued", info.TotalIssued).
		Uint64("treasury", info.Treasury).
		Uint64("horizon", info.Horizon).
		Msg("Ledger loaded")

	n := &Node{
		cfg:     cfg,
		terms:   terms,
		logger:  logger,
		db:      db,
		service: svc,
	}

	// ── 5. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		n.rpcServer = rpc.New(cfg.RPCEndpoint(), svc, reg, acc, cfg.RPC)
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	return n, nil
}

// Start binds the RPC listener.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server listening")
	}
	n.logger.Info().Msg("Node started successfully")
	return nil
}

// Stop shuts the RPC server down and closes the database.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			n.logger.Error().Err(err).Msg("Close database")
		}
	}
	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Service returns the serialized ledger facade.
func (n *Node) Service() *ledger.Service {
	return n.service
}

// Terms returns the terms the node runs under.
func (n *Node) Terms() config.Terms {
	return *n.terms
}
