package ledger

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TicketID distinguishes one ticket slot from another. Minting several units
// under the same id inflates the caller's balance but keeps a single
// ownership entry, so an id is not unique per unit.
type TicketID = uint32

// Fixed resource allowance handed to the supply account at instantiation.
const supplyEndowment = 15

// EventLedger tracks ticket issuance and ownership for one event. All state
// is owned by the ledger; operations either apply every mutation of a call or
// none of them.
type EventLedger struct {
	totalTickets uint64
	ticketOwner  map[TicketID]AccountID
	balances     map[AccountID]uint64

	name     string
	location string
	symbol   string
	date     string
	price    uint32

	supply *SupplyRef
}

// New constructs an EventLedger and synchronously instantiates its
// SupplyAccount through the factory, deriving the child's salt from the raw
// little-endian bytes of version. A failed instantiation returns
// ErrInstantiation instead of aborting the process.
//
// Ticket id 0 is pre-assigned to the constructing caller and the caller's
// balance starts at totalTickets, even when totalTickets is zero.
func New(caller AccountID, totalTickets uint64, version uint32, name, location, symbol, date string, price uint32, childCode CodeHash, factory Factory) (*EventLedger, error) {
	salt := binary.LittleEndian.AppendUint32(nil, version)

	supply, err := factory.Instantiate(childCode, salt, supplyEndowment, totalTickets)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInstantiation, err)
	}

	l := &EventLedger{
		totalTickets: totalTickets,
		ticketOwner:  make(map[TicketID]AccountID),
		balances:     make(map[AccountID]uint64),
		name:         name,
		location:     location,
		symbol:       symbol,
		date:         date,
		price:        price,
		supply:       supply,
	}
	l.balances[caller] = totalTickets
	l.ticketOwner[0] = caller
	return l, nil
}

// Owner returns the current caller, not a stored issuer. The ledger keeps no
// issuer record; callers that need one must track it themselves.
func (l *EventLedger) Owner(caller AccountID) AccountID {
	return caller
}

func (l *EventLedger) Name() string {
	return l.name
}

func (l *EventLedger) Location() string {
	return l.location
}

func (l *EventLedger) Symbol() string {
	return l.symbol
}

func (l *EventLedger) Date() string {
	return l.date
}

func (l *EventLedger) Price() uint32 {
	return l.price
}

func (l *EventLedger) TotalTickets() uint64 {
	return l.totalTickets
}

// Balance returns the calling holder's ticket count.
func (l *EventLedger) Balance(caller AccountID) uint64 {
	return l.BalanceOf(caller)
}

func (l *EventLedger) BalanceOf(holder AccountID) uint64 {
	return l.balances[holder]
}

// Exists reports whether the ticket id is assigned to any holder.
func (l *EventLedger) Exists(id TicketID) bool {
	_, ok := l.ticketOwner[id]
	return ok
}

// Supply returns the handle to the delegate supply account. The handle is
// constructed once and never reassigned; mint and transfer do not touch it.
func (l *EventLedger) Supply() *SupplyRef {
	return l.supply
}

// Mint assigns amount units of the given ticket id to the caller and grows
// the total supply by amount. Later units overwrite the ownership entry of
// earlier ones under the same id. Any caller may mint; there is no
// authorization check.
func (l *EventLedger) Mint(caller AccountID, id TicketID, amount uint64) error {
	tx := l.begin()
	for i := uint64(0); i < amount; i++ {
		if err := tx.addTokenTo(caller, id); err != nil {
			return err
		}
		if err := tx.addSupply(); err != nil {
			return err
		}
	}
	tx.commit()
	return nil
}

// AddTokenTo credits one unit to the holder and assigns the ticket id to it,
// overwriting any prior holder of that id without adjusting the prior
// holder's balance.
func (l *EventLedger) AddTokenTo(to AccountID, id TicketID) error {
	tx := l.begin()
	if err := tx.addTokenTo(to, id); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// TransferFrom moves count units of the ticket id from one holder to another
// by repeatedly removing and re-adding the id. It fails with ErrTokenNotFound
// when the id is unassigned and with ErrArithmeticFault when a removal would
// underflow the source balance; neither `from` being the current owner nor a
// sufficient balance is checked beyond that.
func (l *EventLedger) TransferFrom(from, to AccountID, id TicketID, count uint64) error {
	if !l.Exists(id) {
		return ErrTokenNotFound
	}

	tx := l.begin()
	for i := uint64(0); i < count; i++ {
		if err := tx.removeTokenFrom(from, id); err != nil {
			return err
		}
		if err := tx.addTokenTo(to, id); err != nil {
			return err
		}
	}
	tx.commit()
	return nil
}

// RemoveTokenFrom debits one unit from the holder and deletes the ownership
// entry for the ticket id entirely. Total supply is left untouched, so supply
// and the balance sum diverge after a bare removal.
func (l *EventLedger) RemoveTokenFrom(from AccountID, id TicketID) error {
	tx := l.begin()
	if err := tx.removeTokenFrom(from, id); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// txn stages one call's mutations so a mid-call fault leaves the ledger
// untouched, mirroring the host's all-or-nothing rollback of a faulting call.
type txn struct {
	l        *EventLedger
	total    uint64
	balances map[AccountID]uint64
	owners   map[TicketID]*AccountID // nil entry marks a deletion
}

func (l *EventLedger) begin() *txn {
	return &txn{
		l:        l,
		total:    l.totalTickets,
		balances: make(map[AccountID]uint64),
		owners:   make(map[TicketID]*AccountID),
	}
}

func (tx *txn) balance(holder AccountID) uint64 {
	if b, ok := tx.balances[holder]; ok {
		return b
	}
	return tx.l.balances[holder]
}

func (tx *txn) addTokenTo(to AccountID, id TicketID) error {
	b := tx.balance(to)
	if b == math.MaxUint64 {
		return ErrArithmeticFault
	}
	tx.balances[to] = b + 1
	owner := to
	tx.owners[id] = &owner
	return nil
}

func (tx *txn) removeTokenFrom(from AccountID, id TicketID) error {
	b := tx.balance(from)
	if b == 0 {
		return ErrArithmeticFault
	}
	tx.balances[from] = b - 1
	tx.owners[id] = nil
	return nil
}

func (tx *txn) addSupply() error {
	if tx.total == math.MaxUint64 {
		return ErrArithmeticFault
	}
	tx.total++
	return nil
}

func (tx *txn) commit() {
	tx.l.totalTickets = tx.total
	for holder, b := range tx.balances {
		tx.l.balances[holder] = b
	}
	for id, owner := range tx.owners {
		if owner == nil {
			delete(tx.l.ticketOwner, id)
		} else {
			tx.l.ticketOwner[id] = *owner
		}
	}
}
