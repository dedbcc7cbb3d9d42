package host

import (
	"github.com/zeebo/blake3"

	"github.com/crowdgate/ticketline/internal/ledger"
)

// DeriveAddress computes the deterministic address of a component instance
// from the content hash of its code, the caller-supplied salt and the
// deploying account. Equal inputs always derive the same address, which is
// how duplicate deployments are detected.
func DeriveAddress(code ledger.CodeHash, salt []byte, deployer ledger.AccountID) ledger.AccountID {
	h := blake3.New()
	h.Write(code[:])
	h.Write(salt)
	h.Write(deployer[:])

	var addr ledger.AccountID
	copy(addr[:], h.Sum(nil))
	return addr
}

// LedgerCode is the content-hash identity of the event ledger component
// itself, used when deriving addresses for deployed ledgers.
var LedgerCode = ledger.CodeHash(blake3.Sum256([]byte("ticketline/event-ledger")))
