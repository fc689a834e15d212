// Package wallet holds the keys a refundmint buyer or owner signs RPC
// requests with: a BIP-39 mnemonic, the BIP-32 tree derived from it and an
// encrypted keystore on disk.
package wallet

import (
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/crypto"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

const (
	// MnemonicEntropyBits gives 24-word mnemonics.
	MnemonicEntropyBits = 256

	// SeedSize is the BIP-39 seed length in bytes.
	SeedSize = 64
)

// Signing keys live at m/44'/CoinType'/0'/0/index.
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44
	CoinType     = bip32.FirstHardenedChild + 721
)

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic reports whether words, checksum and length are valid.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 64-byte seed for a mnemonic and optional
// passphrase.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	return seed, nil
}

// DeriveKey returns the signing key for address slot index under seed.
func DeriveKey(seed []byte, index uint32) (*crypto.PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	if index >= bip32.FirstHardenedChild {
		return nil, fmt.Errorf("address index %d out of range", index)
	}
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	for _, step := range []uint32{PurposeBIP44, CoinType, bip32.FirstHardenedChild, 0, index} {
		key, err = key.NewChildKey(step)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", step, err)
		}
	}

	// bip32 pads private keys to 33 bytes with a leading zero.
	raw := key.Key
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	return crypto.PrivateKeyFromBytes(raw)
}

// DeriveAddress returns the ledger address of slot index.
func DeriveAddress(seed []byte, index uint32) (types.Address, error) {
	key, err := DeriveKey(seed, index)
	if err != nil {
		return types.Address{}, err
	}
	defer key.Zero()
	return key.Address(), nil
}
