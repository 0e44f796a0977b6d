// Package vault is chatvault's encrypted local store.
//
// A Store turns JSON values into blobs and back using a single key that is
// generated on first use and kept, hex-encoded and in clear, under KeyName in
// the same Medium as the data. Anyone who can read the medium can read the
// data. The encryption only keeps copied or exported blobs away from casual
// inspection.
//
// Blob layout in the medium:
//
//	{"encrypted":true,"method":"advanced","data":[...],"iv":[...12 bytes]}
//	{"encrypted":true,"method":"simple","data":"<base64>"}
//
// Anything else is Plaintext, typically data written before encryption was
// introduced.
//
// The advanced method is AES-256-GCM keyed with the first 32 characters of
// the hex key and a fresh 12-byte nonce per call. The simple method XORs the
// JSON text with the 64-character key string and base64-encodes the result.
// It is obfuscation only and is used when the store runs in CipherSimple
// mode.
//
// Encrypt and Decrypt fail open: on error they hand back the plaintext value
// or the original blob instead of failing. Sealed.Status and Opened.Status
// tell the two outcomes apart for callers that care.
package vault
