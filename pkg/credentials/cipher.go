package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size in bytes of the master key and the derived file key.
const KeySize = 32

// fileVersion is the first byte of every credential file. It is part of the
// additional authenticated data, so a rewritten version byte fails to open.
const fileVersion byte = 0x01

// fileOverhead is version + XChaCha20-Poly1305 nonce + Poly1305 tag.
const fileOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

var (
	hkdfInfoCredentials = []byte("sync-agent.credentials.v1")
	aadCredentials      = []byte("sync-agent.credentials")
)

// deriveFileKey derives the credential file key from the master key. The
// master key is never used directly for encryption.
func deriveFileKey(masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", KeySize, len(masterKey))
	}
	reader := hkdf.New(sha256.New, masterKey, nil, hkdfInfoCredentials)
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("deriving credential file key: %w", err)
	}
	return key, nil
}

// seal encrypts plaintext into the on-disk layout:
//
//	[version: 1 byte] [nonce: 24 bytes] [ciphertext+tag]
func seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	output := make([]byte, 1+len(nonce), fileOverhead+len(plaintext))
	output[0] = fileVersion
	copy(output[1:], nonce[:])

	return aead.Seal(output, nonce[:], plaintext, buildAAD(fileVersion)), nil
}

// open reverses seal. It fails on a short blob, an unknown version, or an
// authentication failure (wrong key or tampered content).
func open(key, blob []byte) ([]byte, error) {
	if len(blob) < fileOverhead {
		return nil, fmt.Errorf("credential file is %d bytes, minimum is %d", len(blob), fileOverhead)
	}
	if blob[0] != fileVersion {
		return nil, fmt.Errorf("credential file version %d is not supported (expected %d)", blob[0], fileVersion)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	nonce := blob[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, blob[1+chacha20poly1305.NonceSizeX:], buildAAD(blob[0]))
	if err != nil {
		return nil, fmt.Errorf("authentication failed (wrong key or tampered file): %w", err)
	}
	return plaintext, nil
}

func buildAAD(version byte) []byte {
	aad := make([]byte, 1+len(aadCredentials))
	aad[0] = version
	copy(aad[1:], aadCredentials)
	return aad
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
