package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Korku-S16/Web3BuildersERC-721A/config"
	"github.com/Korku-S16/Web3BuildersERC-721A/internal/storage"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// resolveTerms loads the terms file, writing one from boot if it is missing.
// The bool reports whether the file was created.
func resolveTerms(path string, boot Bootstrap) (*config.Terms, bool, error) {
	path = expandHome(path)
	terms, err := config.LoadTerms(path)
	switch {
	case err == nil:
		if err := checkBootstrap(terms, boot); err != nil {
			return nil, false, err
		}
		return terms, false, nil
	case !errors.Is(err, config.ErrTermsNotFound):
		return nil, false, err
	}

	if boot.Owner == "" {
		return nil, false, fmt.Errorf("no terms at %s: pass --owner on first start", path)
	}
	owner, err := types.ParseAddress(boot.Owner)
	if err != nil {
		return nil, false, fmt.Errorf("invalid owner address: %w", err)
	}
	terms = config.DefaultTerms(owner)
	if boot.Price != 0 {
		terms.Price = boot.Price
	}
	if err := config.WriteTerms(path, terms); err != nil {
		return nil, false, fmt.Errorf("write terms: %w", err)
	}
	return terms, true, nil
}

// checkBootstrap refuses bootstrap flags that disagree with existing terms.
func checkBootstrap(terms *config.Terms, boot Bootstrap) error {
	if boot.Owner != "" {
		owner, err := types.ParseAddress(boot.Owner)
		if err != nil {
			return fmt.Errorf("invalid owner address: %w", err)
		}
		if owner != terms.Owner {
			return fmt.Errorf("terms already exist with owner %s", terms.Owner)
		}
	}
	if boot.Price != 0 && boot.Price != terms.Price {
		return fmt.Errorf("terms already exist with price %d", terms.Price)
	}
	return nil
}

// openDB opens the configured storage engine.
func openDB(cfg *config.Config) (storage.DB, error) {
	switch cfg.Storage.Engine {
	case config.EngineMemory:
		return storage.NewMemory(), nil
	case config.EngineBadger, "":
		db, err := storage.NewBadger(expandHome(cfg.DBDir()))
		if err != nil {
			return nil, fmt.Errorf("open database at %s: %w", cfg.DBDir(), err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported storage engine: %s", cfg.Storage.Engine)
	}
}
