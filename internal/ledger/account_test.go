package ledger

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseAccountID(t *testing.T) {
	t.Parallel()

	t.Run("round trips through hex", func(t *testing.T) {
		a := AccountID{0x01, 0xff}
		parsed, err := ParseAccountID(a.String())
		if err != nil {
			t.Fatalf("ParseAccountID: %v", err)
		}
		if parsed != a {
			t.Fatalf("parsed = %v, want %v", parsed, a)
		}
	})

	t.Run("rejects short input", func(t *testing.T) {
		if _, err := ParseAccountID("abcd"); err == nil {
			t.Fatalf("expected error for short input")
		}
	})

	t.Run("rejects non-hex input", func(t *testing.T) {
		if _, err := ParseAccountID(strings.Repeat("zz", 32)); err == nil {
			t.Fatalf("expected error for non-hex input")
		}
	})
}

func TestParseCodeHash(t *testing.T) {
	t.Parallel()

	h := CodeHash{0x42}
	parsed, err := ParseCodeHash(h.String())
	if err != nil {
		t.Fatalf("ParseCodeHash: %v", err)
	}
	if parsed != h {
		t.Fatalf("parsed = %v, want %v", parsed, h)
	}
}

func TestAccountFromUUID(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("3e0f0cd8-95a6-4c3c-8903-4ffb5f4f0c5b")
	a := AccountFromUUID(id)
	b := AccountFromUUID(id)
	if a != b {
		t.Fatalf("derivation is not deterministic: %v vs %v", a, b)
	}

	other := AccountFromUUID(uuid.MustParse("a3a529a1-30ca-4b13-a0ec-774921b1e7e4"))
	if a == other {
		t.Fatalf("distinct users mapped to the same account")
	}
}
