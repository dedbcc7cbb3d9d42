package ledger

import "math"

// SupplyAccount is the delegate counter component. It owns a single balance
// value and nothing else; the parent ledger holds it through a SupplyRef but
// never mutates it directly.
type SupplyAccount struct {
	value uint64
}

func NewSupplyAccount(init uint64) *SupplyAccount {
	return &SupplyAccount{value: init}
}

// Increase increments the stored value by one.
func (s *SupplyAccount) Increase() error {
	if s.value == math.MaxUint64 {
		return ErrArithmeticFault
	}
	s.value++
	return nil
}

func (s *SupplyAccount) Get() uint64 {
	return s.value
}

// SupplyRef is the handle an EventLedger holds to its instantiated
// SupplyAccount: the derived address plus the account itself. Created once at
// construction and never reassigned.
type SupplyRef struct {
	addr    AccountID
	account *SupplyAccount
}

func NewSupplyRef(addr AccountID, account *SupplyAccount) *SupplyRef {
	return &SupplyRef{addr: addr, account: account}
}

func (r *SupplyRef) Address() AccountID {
	return r.addr
}

func (r *SupplyRef) Increase() error {
	return r.account.Increase()
}

func (r *SupplyRef) Get() uint64 {
	return r.account.Get()
}

// Factory instantiates a child component from a content hash of its code and
// a caller-supplied salt. The hosting runtime implements it; tests substitute
// a double.
type Factory interface {
	Instantiate(code CodeHash, salt []byte, endowment uint64, init uint64) (*SupplyRef, error)
}
