package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/crypto"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

const (
	keystoreVersion = 1
	walletExt       = ".wallet"
)

var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
)

// keystoreFile is the on-disk JSON form of one wallet.
type keystoreFile struct {
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	EncryptedSeed []byte         `json:"encrypted_seed"`
	Accounts      []AccountEntry `json:"accounts"`
}

// AccountEntry records a derived address so the CLI can list it without
// the password.
type AccountEntry struct {
	Index   uint32        `json:"index"`
	Name    string        `json:"name"`
	Address types.Address `json:"address"`
}

// Keystore stores encrypted wallets as files in one directory.
type Keystore struct {
	dir string
}

// NewKeystore opens dir, creating it if needed.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

func (ks *Keystore) path(name string) string {
	return filepath.Join(ks.dir, name+walletExt)
}

// Create writes a new wallet holding seed sealed under password. Slot 0 is
// recorded as the "default" account.
func (ks *Keystore) Create(name string, seed, password []byte, params EncryptionParams) (types.Address, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return types.Address{}, fmt.Errorf("invalid wallet name %q", name)
	}
	path := ks.path(name)
	if _, err := os.Stat(path); err == nil {
		return types.Address{}, fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	addr, err := DeriveAddress(seed, 0)
	if err != nil {
		return types.Address{}, err
	}
	sealed, err := Encrypt(seed, password, params)
	if err != nil {
		return types.Address{}, fmt.Errorf("encrypt seed: %w", err)
	}

	kf := &keystoreFile{
		Version:       keystoreVersion,
		CreatedAt:     time.Now().UTC(),
		EncryptedSeed: sealed,
		Accounts:      []AccountEntry{{Index: 0, Name: "default", Address: addr}},
	}
	return addr, ks.write(path, kf)
}

// Load decrypts and returns the seed of a wallet.
func (ks *Keystore) Load(name string, password []byte) ([]byte, error) {
	kf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	seed, err := Decrypt(kf.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	return seed, nil
}

// Signer decrypts a wallet and derives the key for slot index.
func (ks *Keystore) Signer(name string, password []byte, index uint32) (*crypto.PrivateKey, error) {
	seed, err := ks.Load(name, password)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)
	return DeriveKey(seed, index)
}

// NewAccount derives the next unused slot and records it.
func (ks *Keystore) NewAccount(name string, password []byte, label string) (AccountEntry, error) {
	kf, err := ks.read(name)
	if err != nil {
		return AccountEntry{}, err
	}
	seed, err := Decrypt(kf.EncryptedSeed, password)
	if err != nil {
		return AccountEntry{}, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	defer wipe(seed)

	var next uint32
	for _, a := range kf.Accounts {
		if a.Index >= next {
			next = a.Index + 1
		}
	}
	addr, err := DeriveAddress(seed, next)
	if err != nil {
		return AccountEntry{}, err
	}
	if label == "" {
		label = fmt.Sprintf("account-%d", next)
	}
	entry := AccountEntry{Index: next, Name: label, Address: addr}
	kf.Accounts = append(kf.Accounts, entry)
	return entry, ks.write(ks.path(name), kf)
}

// Accounts lists the recorded accounts of a wallet ordered by slot.
func (ks *Keystore) Accounts(name string) ([]AccountEntry, error) {
	kf, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	sort.Slice(kf.Accounts, func(i, j int) bool { return kf.Accounts[i].Index < kf.Accounts[j].Index })
	return kf.Accounts, nil
}

// List returns the names of all wallets in the keystore.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != walletExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), walletExt))
	}
	sort.Strings(names)
	return names, nil
}

func (ks *Keystore) write(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func (ks *Keystore) read(name string) (*keystoreFile, error) {
	data, err := os.ReadFile(ks.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	return &kf, nil
}
