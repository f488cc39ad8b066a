package solana

import (
	"errors"
	"time"
)

// ErrThrottled indicates the RPC endpoint rate-limited the request even
// after the single retry. Callers should degrade to whatever data they
// already have rather than fail the analysis.
var ErrThrottled = errors.New("rpc endpoint throttled request")

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1e9

// SignatureRecord is one entry from the signature list for an address.
// Providers return these newest-first.
type SignatureRecord struct {
	Signature string
	BlockTime *int64 // unix seconds, nil when the node has no block time
	Failed    bool
}

// TokenBalanceEntry is one pre/post token balance row from transaction
// meta, tagged with the owning wallet and mint.
type TokenBalanceEntry struct {
	Owner    string
	Mint     string
	UIAmount float64
}

// ParsedTransaction is our domain view of a full getTransaction result:
// just the fields the signal extractors consume.
// Invariant: PreBalances[i]/PostBalances[i] correspond to AccountKeys[i].
type ParsedTransaction struct {
	Signature         string
	BlockTime         time.Time
	Fee               uint64
	Failed            bool
	AccountKeys       []string
	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []TokenBalanceEntry
	PostTokenBalances []TokenBalanceEntry
	// ProgramIDs lists every invoked program id, top-level instructions
	// first, then inner instructions in execution order.
	ProgramIDs []string
}

// TokenAccountBalance is one SPL token account owned by the wallet.
type TokenAccountBalance struct {
	Mint     string
	Amount   float64
	Decimals uint8
}
