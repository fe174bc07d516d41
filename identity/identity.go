// Package identity declares the external collaborators the feeds core
// consumes but does not implement: consensus's view of the chain head,
// credential verification, and the identity directory that resolves an
// address to its current public encryption key. Block production, gossip
// and signature primitives live outside this module (spec §1).
package identity

import (
	"context"

	"github.com/ground-x/feedscore/types"
)

// BlockchainCache exposes the latest block index known to this node. The
// transaction pipeline and key rotation engine both stamp effects with
// "now", defined as this value.
type BlockchainCache interface {
	LastBlockIndex(ctx context.Context) (types.BlockIndex, error)
}

// CredentialsProvider verifies that a transaction's signature was produced
// by the claimed signer. The feeds core never touches raw key material.
type CredentialsProvider interface {
	VerifySignature(ctx context.Context, signer types.Address, payload, signature []byte) (bool, error)
}

// IdentityStore resolves an address to its current public encryption key,
// the input to ECIES wrapping during key rotation.
type IdentityStore interface {
	EncryptKeyFor(ctx context.Context, addr types.Address) (types.EncryptKey, error)
}
