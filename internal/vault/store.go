package vault

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/illarion/chatvault/internal/crypto"
)

// KeyName is the well-known medium entry holding the hex key in clear
const KeyName = "gui_ai_security_key"

// WeakKeyName marks a key generated without a secure random source
const WeakKeyName = "gui_ai_security_key_weak"

// advancedKeyLen is how many leading characters of the hex key string feed
// AES-256 as raw bytes.
const advancedKeyLen = 32

var (
	ErrKeyUnavailable    = errors.New("secure random source unavailable")
	ErrCipherUnavailable = errors.New("authenticated cipher unavailable")
	ErrKeyFormat         = errors.New("malformed store key")
	ErrEncodeFailure     = errors.New("encode failure")
	ErrDecodeFailure     = errors.New("decode failure")
	ErrNotFound          = errors.New("no stored value")
)

// Medium is the key/value storage the store persists into
type Medium interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// CipherMode selects the encryption path
type CipherMode string

const (
	CipherAuto   CipherMode = "auto"   // AES-GCM
	CipherSimple CipherMode = "simple" // behave as if AES-GCM were missing
)

// State is the key lifecycle state of a medium
type State int

const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "uninitialized"
}

// Status says what actually happened to a value on its way through the store
type Status int

const (
	StatusEncrypted   Status = iota // sealed into an encrypted blob
	StatusDecrypted                 // opened from an encrypted blob
	StatusPassthrough               // plaintext in, plaintext out
	StatusDegraded                  // an error forced the fail-open fallback
)

func (s Status) String() string {
	switch s {
	case StatusEncrypted:
		return "encrypted"
	case StatusDecrypted:
		return "decrypted"
	case StatusPassthrough:
		return "plaintext"
	default:
		return "degraded"
	}
}

// Sealed is the outcome of Encrypt. Blob is always usable unless the value
// could not be serialized at all.
type Sealed struct {
	Blob   Blob
	Status Status
	Err    error
}

// Opened is the outcome of Decrypt. On StatusDegraded Value is the original
// blob JSON, unchanged.
type Opened struct {
	Value  json.RawMessage
	Status Status
	Err    error
}

// Store encrypts JSON values with a key kept in the same medium.
// It never fails closed: see Sealed and Opened.
type Store struct {
	medium Medium
	log    zerolog.Logger
	random io.Reader
	mode   CipherMode

	mu   sync.Mutex
	key  string
	weak bool
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the base logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithRandom replaces crypto/rand for key and nonce generation
func WithRandom(r io.Reader) Option {
	return func(s *Store) { s.random = r }
}

// WithCipherMode selects the encryption path
func WithCipherMode(mode CipherMode) Option {
	return func(s *Store) { s.mode = mode }
}

// New creates a store over medium. The key is loaded lazily by EnsureKey.
func New(medium Medium, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		log:    zerolog.Nop(),
		mode:   CipherAuto,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "vault").Logger()
	return s
}

// EnsureKey returns the store key, creating and persisting it on first use.
// It always returns a usable key. A non-nil error means the key could not be
// read or persisted and only lives for this process.
func (s *Store) EnsureKey() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != "" {
		return s.key, nil
	}

	stored, found, err := s.medium.Get(KeyName)
	if err == nil && found && stored != "" {
		s.key = stored
		s.weak = s.weakMarked()
		return s.key, nil
	}

	key, weak := crypto.GenerateKeyHex(s.random)
	if weak {
		s.weak = true
		s.log.Warn().Err(ErrKeyUnavailable).Msg("Generated key from a non-cryptographic source, stored data is not confidential")
	}

	if err == nil {
		err = s.medium.Set(KeyName, key)
	}
	if err == nil {
		if weak {
			err = s.medium.Set(WeakKeyName, "true")
		} else {
			err = s.medium.Remove(WeakKeyName)
		}
	}
	s.key = key
	if err != nil {
		s.log.Warn().Err(err).Msg("Key not persisted, using an in-memory key for this session")
		return key, fmt.Errorf("failed to persist key: %w", err)
	}

	s.log.Debug().Msg("Created store key")
	return key, nil
}

// WeakKey reports whether the current key came from the PRNG fallback, in
// this process or in the one that created it
func (s *Store) WeakKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weak || s.weakMarked()
}

func (s *Store) weakMarked() bool {
	marked, found, err := s.medium.Get(WeakKeyName)
	return err == nil && found && marked != ""
}

// Method returns the method Encrypt will try
func (s *Store) Method() Method {
	if s.mode == CipherSimple {
		return MethodSimple
	}
	return MethodAdvanced
}

// State reports whether a key has been established for the medium
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != "" {
		return Initialized
	}
	if _, found, err := s.medium.Get(KeyName); err == nil && found {
		return Initialized
	}
	return Uninitialized
}

// Encrypt serializes v and seals it. JSON-falsy values (null, false, 0, "")
// are returned as Plaintext. On any error the value comes back as Plaintext
// with StatusDegraded.
func (s *Store) Encrypt(v any) Sealed {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Msg("Encryption failed, value is not serializable")
		return Sealed{Status: StatusDegraded, Err: fmt.Errorf("%w: %v", ErrEncodeFailure, err)}
	}

	if !truthy(raw) {
		return Sealed{Blob: Plaintext{Value: raw}, Status: StatusPassthrough}
	}

	key, _ := s.EnsureKey()

	var blob Blob
	if s.mode == CipherSimple {
		s.log.Debug().Err(ErrCipherUnavailable).Msg("Using simple obfuscation")
		blob = simpleEncrypt(raw, key)
	} else {
		blob, err = s.advancedEncrypt(raw, key)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("Encryption failed, storing as plain text")
		return Sealed{Blob: Plaintext{Value: raw}, Status: StatusDegraded, Err: err}
	}

	return Sealed{Blob: blob, Status: StatusEncrypted}
}

// Decrypt opens blob. Plaintext is returned unchanged. On any error the
// original blob JSON is returned with StatusDegraded.
func (s *Store) Decrypt(blob Blob) Opened {
	var (
		value []byte
		err   error
	)

	switch b := blob.(type) {
	case Plaintext:
		return Opened{Value: b.Value, Status: StatusPassthrough}
	case AdvancedBlob:
		key, _ := s.EnsureKey()
		value, err = s.advancedDecrypt(b, key)
	case SimpleBlob:
		key, _ := s.EnsureKey()
		value, err = simpleDecrypt(b, key)
	default:
		err = fmt.Errorf("%w: unknown blob type %T", ErrDecodeFailure, blob)
	}

	if err == nil && !json.Valid(value) {
		err = fmt.Errorf("%w: decrypted text is not JSON", ErrDecodeFailure)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("Decryption failed, returning original data")
		original, _ := MarshalBlob(blob)
		return Opened{Value: original, Status: StatusDegraded, Err: err}
	}

	return Opened{Value: value, Status: StatusDecrypted}
}

// DecryptRaw parses stored JSON and decrypts it. Unparseable input is
// returned unchanged with StatusDegraded.
func (s *Store) DecryptRaw(raw []byte) Opened {
	blob, err := ParseBlob(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("Decryption failed, returning original data")
		return Opened{Value: raw, Status: StatusDegraded, Err: err}
	}
	return s.Decrypt(blob)
}

// Save encrypts v and writes the blob under name. A degraded Sealed is still
// written (as plaintext); the error covers serialization and medium failures.
func (s *Store) Save(name string, v any) (Sealed, error) {
	sealed := s.Encrypt(v)
	if sealed.Blob == nil {
		return sealed, sealed.Err
	}

	data, err := MarshalBlob(sealed.Blob)
	if err != nil {
		return sealed, err
	}
	if err := s.medium.Set(name, string(data)); err != nil {
		return sealed, fmt.Errorf("failed to store %s: %w", name, err)
	}
	return sealed, nil
}

// Load reads name, decrypts it and unmarshals into dst. It returns
// ErrNotFound for an absent name and wraps ErrDecodeFailure when the stored
// value could not be turned back into dst; callers treat both as no data.
func (s *Store) Load(name string, dst any) (Opened, error) {
	raw, found, err := s.medium.Get(name)
	if err != nil {
		return Opened{Status: StatusDegraded, Err: err}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !found {
		return Opened{}, ErrNotFound
	}

	opened := s.DecryptRaw([]byte(raw))
	if opened.Status == StatusDegraded {
		return opened, fmt.Errorf("%s: %w", name, opened.Err)
	}
	if err := json.Unmarshal(opened.Value, dst); err != nil {
		return opened, fmt.Errorf("%s: %w: %v", name, ErrDecodeFailure, err)
	}
	return opened, nil
}

// Reset removes the named datasets, the key and its weak marker. The store returns
// to Uninitialized and the next EnsureKey creates a fresh key.
func (s *Store) Reset(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, name := range append(names[:len(names):len(names)], KeyName, WeakKeyName) {
		if err := s.medium.Remove(name); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", name, err))
		}
	}
	s.key = ""
	s.weak = false
	return errors.Join(errs...)
}

// advancedKeyBytes takes the first 32 characters of the hex key as the raw
// AES-256 key, so blobs stay readable by earlier writers of the same medium.
func advancedKeyBytes(key string) ([]byte, error) {
	if len(key) < advancedKeyLen {
		return nil, fmt.Errorf("%w: %d characters, need at least %d", ErrKeyFormat, len(key), advancedKeyLen)
	}
	return []byte(key[:advancedKeyLen]), nil
}

func (s *Store) advancedEncrypt(plaintext []byte, key string) (Blob, error) {
	raw, err := advancedKeyBytes(key)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(raw)

	enc, err := crypto.NewEncryptor(raw, s.random)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipherUnavailable, err)
	}

	ciphertext, nonce, err := enc.Seal(plaintext)
	if err != nil {
		return nil, err
	}
	return AdvancedBlob{Data: ciphertext, IV: nonce}, nil
}

func (s *Store) advancedDecrypt(b AdvancedBlob, key string) ([]byte, error) {
	raw, err := advancedKeyBytes(key)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(raw)

	enc, err := crypto.NewEncryptor(raw, s.random)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipherUnavailable, err)
	}

	plaintext, err := enc.Open(b.Data, b.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return plaintext, nil
}

func simpleEncrypt(plaintext []byte, key string) Blob {
	return SimpleBlob{Data: base64.StdEncoding.EncodeToString(crypto.XOR(plaintext, []byte(key)))}
}

func simpleDecrypt(b SimpleBlob, key string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return crypto.XOR(data, []byte(key)), nil
}
