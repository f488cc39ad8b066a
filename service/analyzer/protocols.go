package analyzer

import (
	"sort"
	"strings"

	"github.com/brojonat/solroast/service/solana"
)

// protocolRegistry maps program ids to display names. Pure lookup data;
// infrastructure programs are deliberately absent so they never show up
// in protocol stats.
var protocolRegistry = map[string]string{
	"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4":  "Jupiter",
	"JUP4Fb2cqiRUcaTHdrPC8h2gNsA2ETXiPDD33WcGuJB":  "Jupiter",
	"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8": "Raydium",
	"CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK": "Raydium",
	"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc":  "Orca",
	"9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP": "Orca",
	"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P":  "Pump.fun",
	"srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX":  "Serum",
	"opnb2LAfJYbRMAHHvqjCwQxanZn7ReEHp1k81EohpZb":  "OpenBook",
	"Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB": "Meteora",
	"LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo":  "Meteora",
	"PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjFHGqdXY":  "Phoenix",
	"EewxydAPCCVuNEyrVN68PuSYdQ7wKn27V9Gjeoi8dy3S": "Lifinity",
	"TSWAPaqyCSx2KABk68Shruf4rp7CxcNi8hAsbdwmHbN":  "Tensor",
	"M2mx93ekt1fmXSVkTrUL9xVFHkmME8HTUi5Cyc5aF7K":  "Magic Eden",
	"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD":  "Marinade",
	"dRiftyHA39MWEi3m9aunc5MzRF1JYuBsbn6VPcn33UH":  "Drift",
	"KLend2g3cP87fffoy8q1mQqGKjrxjC8boSyAYavgmjD":  "Kamino",
}

// swapRouterPrograms is the subset of programs whose presence marks a
// transaction as a swap.
var swapRouterPrograms = map[string]bool{
	"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4":  true,
	"JUP4Fb2cqiRUcaTHdrPC8h2gNsA2ETXiPDD33WcGuJB":  true,
	"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8": true,
	"CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK": true,
	"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc":  true,
	"9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP": true,
	"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P":  true,
	"srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX":  true,
	"opnb2LAfJYbRMAHHvqjCwQxanZn7ReEHp1k81EohpZb":  true,
	"Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB": true,
	"LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo":  true,
	"PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjFHGqdXY":  true,
	"EewxydAPCCVuNEyrVN68PuSYdQ7wKn27V9Gjeoi8dy3S": true,
}

// isSwapTransaction reports whether any invoked program id belongs to a
// known swap router.
func isSwapTransaction(tx *solana.ParsedTransaction) bool {
	for _, id := range tx.ProgramIDs {
		if swapRouterPrograms[id] {
			return true
		}
	}
	return false
}

// buildProtocolStats counts protocol usage over parsed transactions,
// deduplicating multiple hits of the same protocol within one
// transaction. Result is sorted descending by count with percentage
// share of tagged transactions.
func buildProtocolStats(txs []*solana.ParsedTransaction) []ProtocolStat {
	counts := make(map[string]int)
	tagged := 0
	for _, tx := range txs {
		seen := make(map[string]bool)
		for _, id := range tx.ProgramIDs {
			if name, ok := protocolRegistry[id]; ok {
				seen[name] = true
			}
		}
		if len(seen) == 0 {
			continue
		}
		tagged++
		for name := range seen {
			counts[name]++
		}
	}
	return protocolStatsFromCounts(counts, tagged)
}

func protocolStatsFromCounts(counts map[string]int, tagged int) []ProtocolStat {
	stats := make([]ProtocolStat, 0, len(counts))
	for name, count := range counts {
		stat := ProtocolStat{Name: name, TxCount: count}
		if tagged > 0 {
			stat.Pct = round1(float64(count) / float64(tagged) * 100)
		}
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TxCount != stats[j].TxCount {
			return stats[i].TxCount > stats[j].TxCount
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// protocolNameFromSource normalizes a Helius source label ("JUPITER",
// "RAYDIUM", ...) to the registry's display casing.
func protocolNameFromSource(source string) string {
	switch strings.ToUpper(source) {
	case "", "UNKNOWN", "SYSTEM_PROGRAM", "SOLANA_PROGRAM_LIBRARY":
		return ""
	case "JUPITER":
		return "Jupiter"
	case "RAYDIUM":
		return "Raydium"
	case "ORCA":
		return "Orca"
	case "PUMP_FUN", "PUMPFUN":
		return "Pump.fun"
	case "METEORA":
		return "Meteora"
	case "PHOENIX":
		return "Phoenix"
	case "TENSOR":
		return "Tensor"
	case "MAGIC_EDEN":
		return "Magic Eden"
	case "MARINADE":
		return "Marinade"
	case "DRIFT":
		return "Drift"
	default:
		// Fall back to title-casing the label so unrecognized venues
		// still show up.
		lower := strings.ToLower(source)
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
}
