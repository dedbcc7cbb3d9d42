package ledger

import "errors"

// Error kinds returned by ledger operations. NotOwner, NotApproved,
// TokenExists, CannotInsert, CannotFetchValue and NotAllowed are declared by
// the ownership contract but no operation raises them yet: mint, transfer and
// remove run without authorization checks. They stay here so callers can
// already switch on the full set.
var (
	ErrNotOwner         = errors.New("caller is not the owner")
	ErrNotApproved      = errors.New("caller is not approved")
	ErrTokenExists      = errors.New("ticket already exists")
	ErrTokenNotFound    = errors.New("ticket not found")
	ErrCannotInsert     = errors.New("cannot insert ticket")
	ErrCannotFetchValue = errors.New("cannot fetch value")
	ErrNotAllowed       = errors.New("operation not allowed")

	// ErrArithmeticFault reports a checked counter overflow or underflow.
	// The call that hits it applies none of its mutations.
	ErrArithmeticFault = errors.New("arithmetic fault on ticket counter")

	// ErrInstantiation reports a failed supply account instantiation during
	// ledger construction.
	ErrInstantiation = errors.New("cannot instantiate supply account")
)
