package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// AccountID identifies a holder or a deployed component. It is a fixed-width
// opaque value, comparable and usable as a map key.
type AccountID [32]byte

// CodeHash names the code of a child component by content hash.
type CodeHash [32]byte

func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

func (h CodeHash) String() string {
	return hex.EncodeToString(h[:])
}

func ParseAccountID(s string) (AccountID, error) {
	var a AccountID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("invalid account id: %w", err)
	}
	if len(raw) != len(a) {
		return AccountID{}, fmt.Errorf("invalid account id: want %d bytes, got %d", len(a), len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

func ParseCodeHash(s string) (CodeHash, error) {
	var h CodeHash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return CodeHash{}, fmt.Errorf("invalid code hash: %w", err)
	}
	if len(raw) != len(h) {
		return CodeHash{}, fmt.Errorf("invalid code hash: want %d bytes, got %d", len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// AccountFromUUID maps an authenticated user id onto a holder identifier.
func AccountFromUUID(id uuid.UUID) AccountID {
	return AccountID(sha256.Sum256(id[:]))
}
