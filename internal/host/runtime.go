package host

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/crowdgate/ticketline/internal/ledger"
)

var (
	ErrUnknownCode       = errors.New("code hash not registered")
	ErrDuplicateInstance = errors.New("instance already deployed at derived address")
	ErrNoEndowment       = errors.New("instantiation requires a non-zero endowment")
	ErrInstanceNotFound  = errors.New("no instance at address")
)

// Runtime is the hosting environment the ledger core consumes: it resolves
// deterministic addresses, instantiates child components against registered
// code hashes and admits one call at a time, so every operation runs to
// completion before the next one starts.
type Runtime struct {
	mu         sync.Mutex
	codes      map[ledger.CodeHash]struct{}
	ledgers    map[ledger.AccountID]*ledger.EventLedger
	supplies   map[ledger.AccountID]*ledger.SupplyAccount
	endowments map[ledger.AccountID]uint64
}

func NewRuntime() *Runtime {
	return &Runtime{
		codes:      make(map[ledger.CodeHash]struct{}),
		ledgers:    make(map[ledger.AccountID]*ledger.EventLedger),
		supplies:   make(map[ledger.AccountID]*ledger.SupplyAccount),
		endowments: make(map[ledger.AccountID]uint64),
	}
}

// RegisterCode makes a code hash instantiable. It reports whether the hash
// was newly registered.
func (r *Runtime) RegisterCode(code ledger.CodeHash) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codes[code]; ok {
		return false
	}
	r.codes[code] = struct{}{}
	return true
}

// DeployParams carries the construction arguments of an event ledger.
type DeployParams struct {
	TotalTickets uint64
	Version      uint32
	Name         string
	Location     string
	Symbol       string
	Date         string
	Price        uint32
	SupplyCode   ledger.CodeHash
}

// DeployLedger constructs an EventLedger at its derived address. The ledger's
// supply account is instantiated through the runtime with the ledger's own
// address as deployer, so child addresses chain off their parent.
func (r *Runtime) DeployLedger(caller ledger.AccountID, p DeployParams) (ledger.AccountID, *ledger.EventLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	salt := binary.LittleEndian.AppendUint32(nil, p.Version)
	addr := DeriveAddress(LedgerCode, salt, caller)
	if _, ok := r.ledgers[addr]; ok {
		return ledger.AccountID{}, nil, ErrDuplicateInstance
	}

	factory := factoryFunc(func(code ledger.CodeHash, salt []byte, endowment, init uint64) (*ledger.SupplyRef, error) {
		return r.instantiateLocked(code, salt, endowment, init, addr)
	})

	l, err := ledger.New(caller, p.TotalTickets, p.Version, p.Name, p.Location, p.Symbol, p.Date, p.Price, p.SupplyCode, factory)
	if err != nil {
		return ledger.AccountID{}, nil, err
	}

	r.ledgers[addr] = l
	return addr, l, nil
}

// Instantiate implements ledger.Factory for callers outside a deployment,
// deriving the child address with a zero deployer.
func (r *Runtime) Instantiate(code ledger.CodeHash, salt []byte, endowment, init uint64) (*ledger.SupplyRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instantiateLocked(code, salt, endowment, init, ledger.AccountID{})
}

func (r *Runtime) instantiateLocked(code ledger.CodeHash, salt []byte, endowment, init uint64, deployer ledger.AccountID) (*ledger.SupplyRef, error) {
	if _, ok := r.codes[code]; !ok {
		return nil, ErrUnknownCode
	}
	if endowment == 0 {
		return nil, ErrNoEndowment
	}

	addr := DeriveAddress(code, salt, deployer)
	if _, ok := r.supplies[addr]; ok {
		return nil, ErrDuplicateInstance
	}

	account := ledger.NewSupplyAccount(init)
	r.supplies[addr] = account
	r.endowments[addr] = endowment
	return ledger.NewSupplyRef(addr, account), nil
}

// WithLedger runs fn against the ledger at addr under the runtime's
// single-call admission lock.
func (r *Runtime) WithLedger(addr ledger.AccountID, fn func(*ledger.EventLedger) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.ledgers[addr]
	if !ok {
		return ErrInstanceNotFound
	}
	return fn(l)
}

// WithSupply runs fn against the supply account at addr under the runtime's
// single-call admission lock.
func (r *Runtime) WithSupply(addr ledger.AccountID, fn func(*ledger.SupplyAccount) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.supplies[addr]
	if !ok {
		return ErrInstanceNotFound
	}
	return fn(s)
}

// Endowment returns the resource allowance recorded for the instance at addr.
func (r *Runtime) Endowment(addr ledger.AccountID) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.endowments[addr]
	return e, ok
}

type factoryFunc func(code ledger.CodeHash, salt []byte, endowment, init uint64) (*ledger.SupplyRef, error)

func (f factoryFunc) Instantiate(code ledger.CodeHash, salt []byte, endowment, init uint64) (*ledger.SupplyRef, error) {
	return f(code, salt, endowment, init)
}
