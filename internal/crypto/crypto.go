package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"time"
)

const (
	KeySize   = 32 // Raw key size in bytes
	KeyHexLen = 64 // Hex-encoded key length
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
)

var (
	ErrInvalidKey        = errors.New("invalid key size")
	ErrInvalidNonce      = errors.New("invalid nonce size")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
)

// Encryptor provides AES-256-GCM with caller-visible nonces
type Encryptor struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewEncryptor creates an encryptor for a 32-byte key.
// A nil random reader means crypto/rand.
func NewEncryptor(key []byte, random io.Reader) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if random == nil {
		random = rand.Reader
	}

	return &Encryptor{aead: gcm, rand: random}, nil
}

// Seal encrypts plaintext under a fresh random nonce and returns both
func (e *Encryptor) Seal(plaintext []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(e.rand, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return e.aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open decrypts and authenticates ciphertext produced by Seal
func (e *Encryptor) Open(ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidNonce, len(nonce))
	}
	if len(ciphertext) < TagSize {
		return nil, ErrInvalidCiphertext
	}

	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// XOR applies key cyclically over data. It is its own inverse.
// This is obfuscation, not encryption.
func XOR(data, key []byte) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}

// GenerateKeyHex returns KeySize random bytes hex-encoded.
// When the random source fails it falls back to a clock-seeded PRNG and
// reports weak=true: such a key offers no confidentiality at all.
func GenerateKeyHex(random io.Reader) (key string, weak bool) {
	if random == nil {
		random = rand.Reader
	}

	b := make([]byte, KeySize)
	if _, err := io.ReadFull(random, b); err != nil {
		now := uint64(time.Now().UnixNano())
		prng := mrand.New(mrand.NewPCG(now, now>>32))
		for i := range b {
			b[i] = byte(prng.IntN(256))
		}
		weak = true
	}

	key = hex.EncodeToString(b)
	ClearBytes(b)
	return key, weak
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
