package solana

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ParseTransaction converts a GetTransactionResult into our domain view.
// Account keys from the static message are extended with any addresses
// loaded from lookup tables (writable first, then read-only), matching
// the ordering the runtime uses for pre/post balance arrays.
func ParseTransaction(signature string, result *rpc.GetTransactionResult) (*ParsedTransaction, error) {
	if result == nil {
		return nil, fmt.Errorf("nil transaction result for %s", signature)
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", signature, err)
	}

	parsed := &ParsedTransaction{
		Signature: signature,
	}
	if result.BlockTime != nil {
		parsed.BlockTime = result.BlockTime.Time()
	} else {
		parsed.BlockTime = time.Time{}
	}

	accountKeys := tx.Message.AccountKeys
	meta := result.Meta
	if meta != nil {
		parsed.Fee = meta.Fee
		parsed.Failed = meta.Err != nil
		parsed.PreBalances = meta.PreBalances
		parsed.PostBalances = meta.PostBalances
		accountKeys = append(accountKeys, meta.LoadedAddresses.Writable...)
		accountKeys = append(accountKeys, meta.LoadedAddresses.ReadOnly...)
		parsed.PreTokenBalances = tokenBalancesToDomain(meta.PreTokenBalances)
		parsed.PostTokenBalances = tokenBalancesToDomain(meta.PostTokenBalances)
	}

	parsed.AccountKeys = make([]string, len(accountKeys))
	for i, key := range accountKeys {
		parsed.AccountKeys[i] = key.String()
	}

	parsed.ProgramIDs = collectProgramIDs(tx.Message.Instructions, accountKeys, meta)
	return parsed, nil
}

func tokenBalancesToDomain(balances []rpc.TokenBalance) []TokenBalanceEntry {
	entries := make([]TokenBalanceEntry, 0, len(balances))
	for _, tb := range balances {
		entry := TokenBalanceEntry{
			Mint: tb.Mint.String(),
		}
		if tb.Owner != nil {
			entry.Owner = tb.Owner.String()
		}
		if tb.UiTokenAmount != nil && tb.UiTokenAmount.UiAmount != nil {
			entry.UIAmount = *tb.UiTokenAmount.UiAmount
		}
		entries = append(entries, entry)
	}
	return entries
}

// collectProgramIDs lists invoked program ids, top-level first and then
// inner instructions in execution order. Indexes that fall outside the
// account table are skipped rather than failing the whole parse.
func collectProgramIDs(instructions []solana.CompiledInstruction, accountKeys []solana.PublicKey, meta *rpc.TransactionMeta) []string {
	ids := make([]string, 0, len(instructions))
	for _, inst := range instructions {
		if int(inst.ProgramIDIndex) < len(accountKeys) {
			ids = append(ids, accountKeys[inst.ProgramIDIndex].String())
		}
	}
	if meta != nil {
		for _, inner := range meta.InnerInstructions {
			for _, inst := range inner.Instructions {
				if int(inst.ProgramIDIndex) < len(accountKeys) {
					ids = append(ids, accountKeys[inst.ProgramIDIndex].String())
				}
			}
		}
	}
	return ids
}
