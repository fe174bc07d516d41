// Package ecies implements the group-key wrapping primitive used by the key
// rotation engine (spec §4.4 step 5, §9): ephemeral secp256k1 keypair, ECDH,
// HKDF-SHA-256, AES-256-GCM. Exposed as a pure function so it can be unit
// tested without a running IdentityStore.
package ecies

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/hkdf"
)

const (
	nonceLen = 12
	tagLen   = 16
	// Uncompressed secp256k1 public key encoding length.
	pubKeyLen = 65
	// MinCiphertextLen is the minimum length of a wrapped key before any
	// further encoding: ephemeralPub(65) + nonce(12) + ct(>=32) + tag(16).
	MinCiphertextLen = pubKeyLen + nonceLen + 32 + tagLen
)

// Encrypt wraps plaintext (the 256-bit group key) for recipientPub, an
// uncompressed secp256k1 public key. The returned ciphertext is
// ephemeralPub || nonce || ct || tag.
func Encrypt(recipientPub []byte, plaintext []byte) ([]byte, error) {
	pub, err := btcec.ParsePubKey(recipientPub)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient public key: %w", err)
	}

	ephemeral, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	shared := ecdh(ephemeral, pub)
	key, err := deriveKey(shared, ephemeral.PubKey().SerializeUncompressed(), recipientPub)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ct := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, pubKeyLen+nonceLen+len(ct))
	out = append(out, ephemeral.PubKey().SerializeUncompressed()...)
	out = append(out, nonce...)
	out = append(out, ct...)
	return out, nil
}

// Decrypt reverses Encrypt given the recipient's private key. Not used by
// the feeds core itself (clients decrypt) but kept alongside Encrypt so the
// primitive is testable end to end.
func Decrypt(recipientPriv *btcec.PrivateKey, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < pubKeyLen+nonceLen+tagLen {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(ciphertext))
	}
	ephemeralPubBytes := ciphertext[:pubKeyLen]
	nonce := ciphertext[pubKeyLen : pubKeyLen+nonceLen]
	ct := ciphertext[pubKeyLen+nonceLen:]

	ephemeralPub, err := btcec.ParsePubKey(ephemeralPubBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid ephemeral public key: %w", err)
	}

	shared := ecdh(recipientPriv, ephemeralPub)
	key, err := deriveKey(shared, ephemeralPubBytes, recipientPriv.PubKey().SerializeUncompressed())
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return gcm.Open(nil, nonce, ct, nil)
}

// ecdh performs the scalar multiplication priv.D * pub using btcec's
// S256 curve arithmetic and returns the big-endian X coordinate of the
// resulting shared point.
func ecdh(priv *btcec.PrivateKey, pub *btcec.PublicKey) []byte {
	var point btcec.JacobianPoint
	pub.AsJacobian(&point)

	var scalar btcec.ModNScalar
	scalar.Set(&priv.Key)

	var shared btcec.JacobianPoint
	btcec.ScalarMultNonConst(&scalar, &point, &shared)
	shared.ToAffine()

	x := shared.X.Bytes()
	return x[:]
}

func deriveKey(shared, ephemeralPub, recipientPub []byte) ([]byte, error) {
	info := make([]byte, 0, len(ephemeralPub)+len(recipientPub))
	info = append(info, ephemeralPub...)
	info = append(info, recipientPub...)

	h := hkdf.New(sha256.New, shared, nil, info)
	key := make([]byte, 32)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// GenerateGroupKey returns a fresh 256-bit symmetric key from the process
// RNG (spec §4.4 step 4).
func GenerateGroupKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate group key: %w", err)
	}
	return key, nil
}
