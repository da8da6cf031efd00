package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLen is the length of an EVM function selector in bytes.
const SelectorLen = 4

// Selector is the 4-byte identifier of a function on the protected
// bridge ledger. Governance updates address the parameter they change
// through the selector of the setter they will invoke.
type Selector [SelectorLen]byte

// SelectorFromSignature derives the selector from a canonical function
// signature, e.g. "setGlobalMintCap(uint256)".
func SelectorFromSignature(sig string) Selector {
	var sel Selector
	copy(sel[:], crypto.Keccak256([]byte(sig))[:SelectorLen])

	return sel
}

// ParseSelector decodes a selector from its hex form, with or without
// the 0x prefix.
func ParseSelector(s string) (Selector, error) {
	var sel Selector
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return sel, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	if len(raw) != SelectorLen {
		return sel, fmt.Errorf("invalid selector %q: expected %d bytes, got %d", s, SelectorLen, len(raw))
	}
	copy(sel[:], raw)

	return sel, nil
}

func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

func (s Selector) String() string {
	return s.Hex()
}

// MarshalText implements encoding.TextMarshaler so selectors persist as
// hex strings.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Selector) UnmarshalText(text []byte) error {
	sel, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = sel

	return nil
}
