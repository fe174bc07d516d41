package ecies

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey().SerializeUncompressed()

	plaintext := []byte("0123456789abcdef0123456789abcdef") // 32 bytes, arbitrary
	ciphertext, err := Encrypt(pub, plaintext)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(ciphertext), MinCiphertextLen)

	got, err := Decrypt(priv, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey().SerializeUncompressed()

	ciphertext, err := Encrypt(pub, []byte("group key material"))
	require.NoError(t, err)

	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	_, err = Decrypt(other, ciphertext)
	assert.Error(t, err)
}

func TestEncryptRejectsMalformedPublicKey(t *testing.T) {
	_, err := Encrypt([]byte("not a public key"), []byte("plaintext"))
	assert.Error(t, err)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	_, err = Decrypt(priv, []byte("too short"))
	assert.Error(t, err)
}

func TestGenerateGroupKeyLengthAndUniqueness(t *testing.T) {
	a, err := GenerateGroupKey()
	require.NoError(t, err)
	b, err := GenerateGroupKey()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Len(t, b, 32)
	assert.NotEqual(t, a, b)
}
