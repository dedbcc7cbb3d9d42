package ledger

import (
	"errors"
	"testing"
)

type stubFactory struct {
	lastCode      CodeHash
	lastSalt      []byte
	lastEndowment uint64
	fail          bool
}

func (f *stubFactory) Instantiate(code CodeHash, salt []byte, endowment uint64, init uint64) (*SupplyRef, error) {
	if f.fail {
		return nil, errors.New("instantiation refused")
	}
	f.lastCode = code
	f.lastSalt = append([]byte(nil), salt...)
	f.lastEndowment = endowment
	addr := AccountID{0xee}
	return NewSupplyRef(addr, NewSupplyAccount(init)), nil
}

var (
	alice = AccountID{0x01}
	bob   = AccountID{0x02}
)

func newTestLedger(t *testing.T, caller AccountID, totalTickets uint64) *EventLedger {
	t.Helper()
	l, err := New(caller, totalTickets, 1337, "Test_Name", "Test_Location", "Test_Symbol", "Test_Date", 55, CodeHash{0x42}, &stubFactory{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("initializes metadata and caller holdings", func(t *testing.T) {
		factory := &stubFactory{}
		l, err := New(alice, 100, 1337, "Test_Name", "Test_Location", "Test_Symbol", "Test_Date", 55, CodeHash{0x42}, factory)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		if got := l.TotalTickets(); got != 100 {
			t.Fatalf("TotalTickets = %d, want 100", got)
		}
		if got := l.Balance(alice); got != 100 {
			t.Fatalf("Balance(alice) = %d, want 100", got)
		}
		if l.Name() != "Test_Name" || l.Location() != "Test_Location" || l.Symbol() != "Test_Symbol" || l.Date() != "Test_Date" {
			t.Fatalf("metadata mismatch: %q %q %q %q", l.Name(), l.Location(), l.Symbol(), l.Date())
		}
		if got := l.Price(); got != 55 {
			t.Fatalf("Price = %d, want 55", got)
		}
		if !l.Exists(0) {
			t.Fatalf("ticket 0 should be pre-assigned to the constructing caller")
		}
		if got := l.Supply().Get(); got != 100 {
			t.Fatalf("supply account init = %d, want 100", got)
		}
	})

	t.Run("derives the child salt from the version bytes", func(t *testing.T) {
		factory := &stubFactory{}
		if _, err := New(alice, 0, 0x04030201, "n", "l", "s", "d", 1, CodeHash{0x42}, factory); err != nil {
			t.Fatalf("New: %v", err)
		}
		want := []byte{0x01, 0x02, 0x03, 0x04}
		if string(factory.lastSalt) != string(want) {
			t.Fatalf("salt = %x, want %x", factory.lastSalt, want)
		}
		if factory.lastEndowment != 15 {
			t.Fatalf("endowment = %d, want 15", factory.lastEndowment)
		}
		if factory.lastCode != (CodeHash{0x42}) {
			t.Fatalf("code hash = %v, want %v", factory.lastCode, CodeHash{0x42})
		}
	})

	t.Run("pre-assigns ticket 0 even with zero tickets", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if !l.Exists(0) {
			t.Fatalf("ticket 0 should exist regardless of total tickets")
		}
		if got := l.Balance(alice); got != 0 {
			t.Fatalf("Balance(alice) = %d, want 0", got)
		}
	})

	t.Run("surfaces instantiation failure as an error", func(t *testing.T) {
		_, err := New(alice, 10, 1, "n", "l", "s", "d", 1, CodeHash{0x42}, &stubFactory{fail: true})
		if !errors.Is(err, ErrInstantiation) {
			t.Fatalf("err = %v, want ErrInstantiation", err)
		}
	})
}

func TestOwner(t *testing.T) {
	t.Parallel()

	// Owner echoes whoever asks; the constructing caller is not recorded.
	l := newTestLedger(t, alice, 10)
	if got := l.Owner(bob); got != bob {
		t.Fatalf("Owner(bob) = %v, want bob", got)
	}
}

func TestMint(t *testing.T) {
	t.Parallel()

	t.Run("grows supply and caller balance by amount", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 10); err != nil {
			t.Fatalf("Mint: %v", err)
		}
		if got := l.TotalTickets(); got != 10 {
			t.Fatalf("TotalTickets = %d, want 10", got)
		}
		if got := l.Balance(alice); got != 10 {
			t.Fatalf("Balance(alice) = %d, want 10", got)
		}
		if !l.Exists(1) {
			t.Fatalf("ticket 1 should exist after minting")
		}
	})

	t.Run("does not touch the supply account", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 10); err != nil {
			t.Fatalf("Mint: %v", err)
		}
		if got := l.Supply().Get(); got != 0 {
			t.Fatalf("supply account = %d, want 0 (mint never syncs it)", got)
		}
	})

	t.Run("same id overwrites ownership, any caller may mint", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 1); err != nil {
			t.Fatalf("Mint(alice): %v", err)
		}
		if err := l.Mint(bob, 1, 1); err != nil {
			t.Fatalf("Mint(bob): %v", err)
		}
		if got := l.TotalTickets(); got != 2 {
			t.Fatalf("TotalTickets = %d, want 2", got)
		}
		if l.Balance(alice) != 1 || l.Balance(bob) != 1 {
			t.Fatalf("balances = %d/%d, want 1/1", l.Balance(alice), l.Balance(bob))
		}

		// Bob holds the single ownership entry now: removing from him
		// unassigns the id while alice's stale unit lingers in her balance.
		if err := l.RemoveTokenFrom(bob, 1); err != nil {
			t.Fatalf("RemoveTokenFrom: %v", err)
		}
		if l.Exists(1) {
			t.Fatalf("ticket 1 should be unassigned after removal")
		}
		if got := l.Balance(alice); got != 1 {
			t.Fatalf("Balance(alice) = %d, want 1", got)
		}
	})
}

func TestTransferFrom(t *testing.T) {
	t.Parallel()

	t.Run("fails with TokenNotFound for an unassigned id", func(t *testing.T) {
		l := newTestLedger(t, alice, 10)
		err := l.TransferFrom(alice, bob, 7, 1)
		if !errors.Is(err, ErrTokenNotFound) {
			t.Fatalf("err = %v, want ErrTokenNotFound", err)
		}
		if l.Balance(alice) != 10 || l.Balance(bob) != 0 {
			t.Fatalf("balances changed on failed transfer: %d/%d", l.Balance(alice), l.Balance(bob))
		}
	})

	t.Run("moves balances across sequential transfers", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 10); err != nil {
			t.Fatalf("Mint: %v", err)
		}

		if err := l.TransferFrom(alice, bob, 1, 1); err != nil {
			t.Fatalf("TransferFrom: %v", err)
		}
		if l.Balance(alice) != 9 || l.Balance(bob) != 1 {
			t.Fatalf("balances = %d/%d, want 9/1", l.Balance(alice), l.Balance(bob))
		}

		if err := l.TransferFrom(alice, bob, 1, 5); err != nil {
			t.Fatalf("TransferFrom: %v", err)
		}
		if l.Balance(alice) != 4 || l.Balance(bob) != 6 {
			t.Fatalf("balances = %d/%d, want 4/6", l.Balance(alice), l.Balance(bob))
		}
	})

	t.Run("underflow faults atomically", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 2); err != nil {
			t.Fatalf("Mint: %v", err)
		}

		err := l.TransferFrom(alice, bob, 1, 5)
		if !errors.Is(err, ErrArithmeticFault) {
			t.Fatalf("err = %v, want ErrArithmeticFault", err)
		}
		if l.Balance(alice) != 2 || l.Balance(bob) != 0 {
			t.Fatalf("balances = %d/%d, want 2/0 after rolled-back fault", l.Balance(alice), l.Balance(bob))
		}
		if !l.Exists(1) {
			t.Fatalf("ownership entry must survive a rolled-back transfer")
		}
	})

	t.Run("does not require from to own the ticket", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 1); err != nil {
			t.Fatalf("Mint: %v", err)
		}
		if err := l.AddTokenTo(bob, 2); err != nil {
			t.Fatalf("AddTokenTo: %v", err)
		}

		// Ticket 2 is bob's, yet transferring it "from" alice is accepted as
		// long as her balance covers the count.
		if err := l.TransferFrom(alice, bob, 2, 1); err != nil {
			t.Fatalf("TransferFrom: %v", err)
		}
		if l.Balance(alice) != 0 || l.Balance(bob) != 2 {
			t.Fatalf("balances = %d/%d, want 0/2", l.Balance(alice), l.Balance(bob))
		}
	})

	t.Run("self-transfer needs a single unit, not count units", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 2); err != nil {
			t.Fatalf("Mint: %v", err)
		}

		// Each round removes one unit and adds it back, so a balance of 2
		// survives a count of 5.
		if err := l.TransferFrom(alice, alice, 1, 5); err != nil {
			t.Fatalf("TransferFrom: %v", err)
		}
		if got := l.Balance(alice); got != 2 {
			t.Fatalf("Balance(alice) = %d, want 2", got)
		}
	})

	t.Run("zero count leaves everything untouched", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 3); err != nil {
			t.Fatalf("Mint: %v", err)
		}
		if err := l.TransferFrom(alice, bob, 1, 0); err != nil {
			t.Fatalf("TransferFrom: %v", err)
		}
		if l.Balance(alice) != 3 || l.Balance(bob) != 0 {
			t.Fatalf("balances = %d/%d, want 3/0", l.Balance(alice), l.Balance(bob))
		}
	})
}

func TestRemoveTokenFrom(t *testing.T) {
	t.Parallel()

	t.Run("balance and supply diverge after a bare removal", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		if err := l.Mint(alice, 1, 10); err != nil {
			t.Fatalf("Mint: %v", err)
		}
		if err := l.Mint(alice, 2, 10); err != nil {
			t.Fatalf("Mint: %v", err)
		}
		if got := l.TotalTickets(); got != 20 {
			t.Fatalf("TotalTickets = %d, want 20", got)
		}

		if err := l.RemoveTokenFrom(alice, 1); err != nil {
			t.Fatalf("RemoveTokenFrom: %v", err)
		}
		if got := l.Balance(alice); got != 19 {
			t.Fatalf("Balance(alice) = %d, want 19", got)
		}
		if got := l.TotalTickets(); got != 20 {
			t.Fatalf("TotalTickets = %d, want 20 (removal never shrinks supply)", got)
		}
		if l.Exists(1) {
			t.Fatalf("ticket 1 should be deleted")
		}
	})

	t.Run("faults on a zero balance", func(t *testing.T) {
		l := newTestLedger(t, alice, 0)
		err := l.RemoveTokenFrom(bob, 0)
		if !errors.Is(err, ErrArithmeticFault) {
			t.Fatalf("err = %v, want ErrArithmeticFault", err)
		}
		if !l.Exists(0) {
			t.Fatalf("ownership entry must survive a faulting removal")
		}
	})
}

func TestAddTokenTo(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, alice, 0)
	if err := l.AddTokenTo(bob, 9); err != nil {
		t.Fatalf("AddTokenTo: %v", err)
	}
	if got := l.Balance(bob); got != 1 {
		t.Fatalf("Balance(bob) = %d, want 1", got)
	}
	if !l.Exists(9) {
		t.Fatalf("ticket 9 should exist")
	}

	// Reassigning the id does not debit the prior holder.
	if err := l.AddTokenTo(alice, 9); err != nil {
		t.Fatalf("AddTokenTo: %v", err)
	}
	if l.Balance(bob) != 1 || l.Balance(alice) != 1 {
		t.Fatalf("balances = %d/%d, want 1/1", l.Balance(bob), l.Balance(alice))
	}
}
