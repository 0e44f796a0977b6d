// Package crypto provides the cipher primitives used by chatvault's store.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key supplied by the caller (no key derivation)
//   - 12-byte random nonce per Seal call, returned to the caller for storage
//   - Authenticated encryption prevents undetected tampering
//
// XOR is a repeating-key obfuscation used only when AES-GCM is unavailable.
// It hides data from a casual glance and nothing more.
//
// GenerateKeyHex falls back to math/rand when the system random source
// fails. A key produced that way is predictable.
package crypto
