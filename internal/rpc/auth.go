package rpc

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Korku-S16/Web3BuildersERC-721A/internal/payout"

	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/crypto"
	"github.com/Korku-S16/Web3BuildersERC-721A/pkg/types"
)

// authTag domain-separates request signatures from every other hash.
const authTag = "refundmint rpc auth v1"

// Auth proves who is calling a mutating method. The signature covers the
// method name, the nonce and the JSON encoding of the params with Auth left
// out. Nonce must be the signer's next account nonce; each one is accepted
// once.
type Auth struct {
	PubKey    string `json:"pubkey"`    // Hex compressed secp256k1 key (33 bytes).
	Nonce     uint64 `json:"nonce"`     // See account_getBalance.
	Signature string `json:"signature"` // Hex Schnorr signature (64 bytes).
}

// SigningHash returns the hash a caller signs for method at nonce. unsigned
// must be the params struct with its Auth field nil.
func SigningHash(method string, nonce uint64, unsigned interface{}) (types.Hash, error) {
	data, err := json.Marshal(unsigned)
	if err != nil {
		return types.Hash{}, fmt.Errorf("marshal params: %w", err)
	}
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return crypto.TaggedHash(authTag, []byte(method), n[:], data), nil
}

// Sign produces the Auth for calling method at nonce with unsigned params.
func Sign(signer crypto.Signer, method string, nonce uint64, unsigned interface{}) (*Auth, error) {
	h, err := SigningHash(method, nonce, unsigned)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(h[:])
	if err != nil {
		return nil, err
	}
	return &Auth{
		PubKey:    hex.EncodeToString(signer.PublicKey()),
		Nonce:     nonce,
		Signature: hex.EncodeToString(sig),
	}, nil
}

// verifyAuth checks auth against method and unsigned params and returns the
// signer's address.
func verifyAuth(method string, unsigned interface{}, auth *Auth) (types.Address, *Error) {
	if auth == nil {
		return types.Address{}, &Error{Code: CodeUnauthorized, Message: "auth is required"}
	}
	pub, err := hex.DecodeString(auth.PubKey)
	if err != nil || len(pub) != crypto.PublicKeySize {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "invalid auth pubkey: must be 33-byte hex"}
	}
	sig, err := hex.DecodeString(auth.Signature)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "invalid auth signature: not hex"}
	}

	h, err := SigningHash(method, auth.Nonce, unsigned)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	if !crypto.VerifySignature(h[:], sig, pub) {
		return types.Address{}, &Error{Code: CodeUnauthorized, Message: "signature does not verify"}
	}
	return crypto.AddressFromPubKey(pub), nil
}

// authorize verifies auth and consumes its nonce, so a signed request runs
// at most once. The nonce is spent even if the operation then fails.
func (s *Server) authorize(method string, unsigned interface{}, auth *Auth) (types.Address, *Error) {
	addr, rpcErr := verifyAuth(method, unsigned, auth)
	if rpcErr != nil {
		return types.Address{}, rpcErr
	}
	err := s.ledger.View(func() error {
		return s.accounts.UseNonce(addr, auth.Nonce)
	})
	if errors.Is(err, payout.ErrNonceMismatch) {
		return types.Address{}, &Error{Code: CodeUnauthorized, Message: err.Error(), Data: "stale_nonce"}
	}
	if err != nil {
		return types.Address{}, &Error{Code: CodeInternalError, Message: fmt.Sprintf("nonce: %v", err)}
	}
	return addr, nil
}
