// Package helius provides a client for the Helius enhanced transaction
// API. It is optional: without an API key the analyzer falls back to raw
// RPC sampling.
package helius

import "errors"

// ErrThrottled indicates Helius rate-limited the request even after the
// single retry.
var ErrThrottled = errors.New("helius throttled request")

// ErrNotConfigured indicates no API key was supplied.
var ErrNotConfigured = errors.New("helius api key not configured")

// NativeTransfer is a SOL movement within an enhanced transaction,
// amounts in lamports.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}

// TokenTransfer is an SPL token movement within an enhanced transaction.
type TokenTransfer struct {
	FromUserAccount string  `json:"fromUserAccount"`
	ToUserAccount   string  `json:"toUserAccount"`
	Mint            string  `json:"mint"`
	TokenAmount     float64 `json:"tokenAmount"`
}

// Instruction is a top-level instruction with its inner instructions.
type Instruction struct {
	ProgramID         string             `json:"programId"`
	InnerInstructions []InnerInstruction `json:"innerInstructions"`
}

// InnerInstruction is a CPI call nested under a top-level instruction.
type InnerInstruction struct {
	ProgramID string `json:"programId"`
}

// Transaction is one enhanced transaction from the v0 API. Timestamp is
// unix seconds. Type is Helius's classification (SWAP, TRANSFER,
// NFT_SALE, ...) and Source the protocol it attributes the transaction
// to (JUPITER, RAYDIUM, ...).
type Transaction struct {
	Signature        string           `json:"signature"`
	Timestamp        int64            `json:"timestamp"`
	Type             string           `json:"type"`
	Source           string           `json:"source"`
	Fee              int64            `json:"fee"`
	FeePayer         string           `json:"feePayer"`
	TransactionError any              `json:"transactionError"`
	NativeTransfers  []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers   []TokenTransfer  `json:"tokenTransfers"`
	Instructions     []Instruction    `json:"instructions"`
}

// Failed reports whether the transaction errored on chain.
func (t *Transaction) Failed() bool {
	return t.TransactionError != nil
}

// TokenBalance is one token holding from the balances endpoint. Amount
// is the raw integer amount; divide by 10^Decimals for the UI amount.
type TokenBalance struct {
	Mint     string `json:"mint"`
	Amount   int64  `json:"amount"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
}

// Balances is the response of the balances endpoint. NativeBalance is
// in lamports.
type Balances struct {
	Tokens        []TokenBalance `json:"tokens"`
	NativeBalance int64          `json:"nativeBalance"`
}
