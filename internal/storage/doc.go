// Package storage provides the BBolt file that stands in for browser local
// storage.
//
// Database structure uses two buckets:
//   - meta: format version and created/modified timestamps
//   - local: flat string keys to string values, one file per profile
//
// The store gives no confidentiality of its own. Values that need protection
// are encrypted by the vault package before they reach Set, and the key that
// protects them lives in the same bucket.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
