package vault

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/illarion/chatvault/internal/crypto"
)

// Method tags how an encrypted blob was produced
type Method string

const (
	MethodAdvanced Method = "advanced" // AES-256-GCM
	MethodSimple   Method = "simple"   // repeating-key XOR + base64
)

// Blob is the persisted form of a value. It is one of Plaintext,
// AdvancedBlob or SimpleBlob, decided once by ParseBlob.
type Blob interface {
	isBlob()
}

// Plaintext is a value stored without encryption: data written before
// encryption existed, or a value Encrypt had to leave alone.
type Plaintext struct {
	Value json.RawMessage
}

// AdvancedBlob holds AES-GCM ciphertext and the nonce it was sealed with
type AdvancedBlob struct {
	Data []byte
	IV   []byte
}

// SimpleBlob holds base64 of the XOR-obfuscated JSON text
type SimpleBlob struct {
	Data string
}

func (Plaintext) isBlob()    {}
func (AdvancedBlob) isBlob() {}
func (SimpleBlob) isBlob()   {}

// byteList marshals as a JSON array of small integers instead of base64,
// which is the layout browser storage used for typed arrays.
type byteList []byte

func (b byteList) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func (b *byteList) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

type advancedWire struct {
	Encrypted bool     `json:"encrypted"`
	Method    Method   `json:"method"`
	Data      byteList `json:"data"`
	IV        byteList `json:"iv"`
}

type simpleWire struct {
	Encrypted bool   `json:"encrypted"`
	Method    Method `json:"method"`
	Data      string `json:"data"`
}

type probeWire struct {
	Encrypted json.RawMessage `json:"encrypted"`
	Method    Method          `json:"method"`
	Data      json.RawMessage `json:"data"`
	IV        json.RawMessage `json:"iv"`
}

// MarshalBlob renders a blob in its storage JSON shape
func MarshalBlob(b Blob) ([]byte, error) {
	switch b := b.(type) {
	case Plaintext:
		if len(b.Value) == 0 {
			return []byte("null"), nil
		}
		return b.Value, nil
	case AdvancedBlob:
		return json.Marshal(advancedWire{Encrypted: true, Method: MethodAdvanced, Data: b.Data, IV: b.IV})
	case SimpleBlob:
		return json.Marshal(simpleWire{Encrypted: true, Method: MethodSimple, Data: b.Data})
	default:
		return nil, fmt.Errorf("%w: unknown blob type %T", ErrEncodeFailure, b)
	}
}

// ParseBlob decides which variant raw storage JSON holds. Anything that is
// not an object with a truthy "encrypted" field is Plaintext. Any method
// other than "advanced" is read as simple.
func ParseBlob(raw []byte) (Blob, error) {
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: stored value is not JSON", ErrDecodeFailure)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return Plaintext{Value: raw}, nil
	}

	var probe probeWire
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	if !truthy(probe.Encrypted) {
		return Plaintext{Value: raw}, nil
	}

	if probe.Method == MethodAdvanced {
		var data, iv byteList
		if err := json.Unmarshal(probe.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: data: %v", ErrDecodeFailure, err)
		}
		if err := json.Unmarshal(probe.IV, &iv); err != nil {
			return nil, fmt.Errorf("%w: iv: %v", ErrDecodeFailure, err)
		}
		if len(iv) != crypto.NonceSize {
			return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrDecodeFailure, crypto.NonceSize, len(iv))
		}
		return AdvancedBlob{Data: data, IV: iv}, nil
	}

	var data string
	if err := json.Unmarshal(probe.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrDecodeFailure, err)
	}
	return SimpleBlob{Data: data}, nil
}

// truthy mirrors loose truthiness for a JSON scalar
func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
