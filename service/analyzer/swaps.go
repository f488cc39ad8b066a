package analyzer

import (
	"math"
	"sort"
	"time"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
)

const (
	solMint   = "So11111111111111111111111111111111111111112"
	solSymbol = "SOL"

	// minSolAttribution is the native delta below which we don't bother
	// attributing a SOL leg (fees and rent churn).
	minSolAttribution = 0.01

	// Buys are valued pessimistically: no live per-token price lookup is
	// performed, so a buy's residual value is assumed near zero.
	assumedResidualPct = 5.0
)

// extractSwapsFromTx reconstructs swaps from one parsed transaction.
// Non-swap transactions (no router program invoked) yield nothing. The
// spent mint becomes token_in, the received mint token_out; a native
// delta with no covering token delta is attributed directly to SOL.
func extractSwapsFromTx(tx *solana.ParsedTransaction, wallet string, tokenList map[string]refdata.TokenInfo) []Swap {
	if tx == nil || tx.Failed || !isSwapTransaction(tx) {
		return nil
	}

	// Per-mint balance deltas for rows owned by the subject wallet.
	deltas := make(map[string]float64)
	for _, tb := range tx.PreTokenBalances {
		if tb.Owner == wallet {
			deltas[tb.Mint] -= tb.UIAmount
		}
	}
	for _, tb := range tx.PostTokenBalances {
		if tb.Owner == wallet {
			deltas[tb.Mint] += tb.UIAmount
		}
	}

	swap := Swap{Timestamp: tx.BlockTime.Unix()}
	if tx.BlockTime.IsZero() {
		swap.Timestamp = 0
	}

	for mint, delta := range deltas {
		leg := &SwapLeg{Mint: mint, Symbol: symbolFor(mint, tokenList), Amount: math.Abs(delta)}
		switch {
		case delta < 0 && (swap.TokenIn == nil || leg.Amount > swap.TokenIn.Amount):
			swap.TokenIn = leg
		case delta > 0 && (swap.TokenOut == nil || leg.Amount > swap.TokenOut.Amount):
			swap.TokenOut = leg
		}
	}

	// Native delta for the wallet's slot in the parallel balance arrays.
	for i, key := range tx.AccountKeys {
		if key != wallet {
			continue
		}
		if i < len(tx.PreBalances) && i < len(tx.PostBalances) {
			swap.SolChange = (float64(tx.PostBalances[i]) - float64(tx.PreBalances[i])) / solana.LamportsPerSOL
		}
		break
	}

	if swap.SolChange < -minSolAttribution && swap.TokenIn == nil {
		swap.TokenIn = &SwapLeg{Mint: solMint, Symbol: solSymbol, Amount: math.Abs(swap.SolChange)}
	}
	if swap.SolChange > minSolAttribution && swap.TokenOut == nil {
		swap.TokenOut = &SwapLeg{Mint: solMint, Symbol: solSymbol, Amount: swap.SolChange}
	}

	if swap.TokenIn == nil && swap.TokenOut == nil {
		return nil
	}
	return []Swap{swap}
}

// extractSwapsFromHelius derives the same swap shape from enriched
// SWAP-typed records. Wrapped SOL transfers count toward the native
// delta rather than as a token leg.
func extractSwapsFromHelius(txs []helius.Transaction, wallet string, tokenList map[string]refdata.TokenInfo) []Swap {
	var swaps []Swap
	for i := range txs {
		tx := &txs[i]
		if tx.Failed() || (tx.Type != "SWAP" && tx.Type != "TOKEN_SWAP") {
			continue
		}

		swap := Swap{Timestamp: tx.Timestamp}
		var solChange float64
		for _, nt := range tx.NativeTransfers {
			if nt.ToUserAccount == wallet {
				solChange += float64(nt.Amount) / solana.LamportsPerSOL
			}
			if nt.FromUserAccount == wallet {
				solChange -= float64(nt.Amount) / solana.LamportsPerSOL
			}
		}

		deltas := make(map[string]float64)
		for _, tt := range tx.TokenTransfers {
			if tt.Mint == solMint {
				if tt.ToUserAccount == wallet {
					solChange += tt.TokenAmount
				}
				if tt.FromUserAccount == wallet {
					solChange -= tt.TokenAmount
				}
				continue
			}
			if tt.ToUserAccount == wallet {
				deltas[tt.Mint] += tt.TokenAmount
			}
			if tt.FromUserAccount == wallet {
				deltas[tt.Mint] -= tt.TokenAmount
			}
		}

		for mint, delta := range deltas {
			leg := &SwapLeg{Mint: mint, Symbol: symbolFor(mint, tokenList), Amount: math.Abs(delta)}
			switch {
			case delta < 0 && (swap.TokenIn == nil || leg.Amount > swap.TokenIn.Amount):
				swap.TokenIn = leg
			case delta > 0 && (swap.TokenOut == nil || leg.Amount > swap.TokenOut.Amount):
				swap.TokenOut = leg
			}
		}

		swap.SolChange = solChange
		if solChange < -minSolAttribution && swap.TokenIn == nil {
			swap.TokenIn = &SwapLeg{Mint: solMint, Symbol: solSymbol, Amount: math.Abs(solChange)}
		}
		if solChange > minSolAttribution && swap.TokenOut == nil {
			swap.TokenOut = &SwapLeg{Mint: solMint, Symbol: solSymbol, Amount: solChange}
		}
		if swap.TokenIn == nil && swap.TokenOut == nil {
			continue
		}
		swaps = append(swaps, swap)
	}
	return swaps
}

func symbolFor(mint string, tokenList map[string]refdata.TokenInfo) string {
	if mint == solMint {
		return solSymbol
	}
	if info, ok := tokenList[mint]; ok {
		return info.Symbol
	}
	return unknownSymbol
}

// isBuy reports whether the swap spent SOL for a token.
func isBuy(s Swap) bool {
	return s.TokenIn != nil && isNativeLeg(s.TokenIn) && s.TokenOut != nil && !isNativeLeg(s.TokenOut)
}

// isSell reports whether the swap sold a token for SOL.
func isSell(s Swap) bool {
	return s.TokenOut != nil && isNativeLeg(s.TokenOut) && s.TokenIn != nil && !isNativeLeg(s.TokenIn)
}

func isNativeLeg(leg *SwapLeg) bool {
	return leg.Symbol == solSymbol || leg.Mint == solMint
}

// swapSummary is the aggregate PnL view over reconstructed swaps.
type swapSummary struct {
	EstimatedPnlSol    float64
	TotalSwapsDetected int
	WinRate            float64
	TotalSolVolume     float64
	BiggestLoss        *BiggestLoss
	BiggestWin         *BiggestWin
}

// analyzeSwaps aggregates PnL over reconstructed swaps. The biggest
// loss is the single largest buy valued at a fixed residual percentage
// (documented heuristic, no live price lookup); the biggest win is the
// single largest sell.
func analyzeSwaps(swaps []Swap) swapSummary {
	summary := swapSummary{TotalSwapsDetected: len(swaps)}

	var sells, winningSells int
	for _, s := range swaps {
		summary.TotalSolVolume += math.Abs(s.SolChange)

		if isBuy(s) {
			summary.EstimatedPnlSol += s.SolChange
			spent := math.Abs(s.SolChange)
			if summary.BiggestLoss == nil || spent > summary.BiggestLoss.SolSpent {
				summary.BiggestLoss = &BiggestLoss{
					Token:           s.TokenOut.Symbol,
					SolSpent:        round4(spent),
					CurrentValueSol: round4(spent * assumedResidualPct / 100),
					LossPct:         100 - assumedResidualPct,
				}
			}
		}
		if isSell(s) {
			summary.EstimatedPnlSol += s.SolChange
			sells++
			if s.SolChange > 0 {
				winningSells++
			}
			received := s.SolChange
			if summary.BiggestWin == nil || received > summary.BiggestWin.SolReceived {
				summary.BiggestWin = &BiggestWin{
					Token:       s.TokenIn.Symbol,
					SolReceived: round4(received),
				}
			}
		}
	}

	if sells > 0 {
		summary.WinRate = float64(winningSells) / float64(sells)
	}
	summary.EstimatedPnlSol = round4(summary.EstimatedPnlSol)
	summary.TotalSolVolume = round4(summary.TotalSolVolume)
	return summary
}

// buildLossByToken nets SOL spent against SOL recovered per token and
// returns only tokens with a net loss, largest first.
func buildLossByToken(swaps []Swap) []TokenLoss {
	net := make(map[string]float64)
	for _, s := range swaps {
		if isBuy(s) {
			net[s.TokenOut.Symbol] += math.Abs(s.SolChange)
		}
		if isSell(s) {
			net[s.TokenIn.Symbol] -= s.SolChange
		}
	}

	losses := make([]TokenLoss, 0, len(net))
	for token, lost := range net {
		if lost <= 0 {
			continue
		}
		losses = append(losses, TokenLoss{Token: token, SolLost: round4(lost)})
	}
	sort.Slice(losses, func(i, j int) bool {
		if losses[i].SolLost != losses[j].SolLost {
			return losses[i].SolLost > losses[j].SolLost
		}
		return losses[i].Token < losses[j].Token
	})
	return losses
}

// buildLossByPeriod nets swap SOL flow per calendar month and returns
// losing months in chronological order, annotated with market events.
func buildLossByPeriod(swaps []Swap) []PeriodLoss {
	net := make(map[string]float64)
	for _, s := range swaps {
		if s.Timestamp == 0 {
			continue
		}
		month := time.Unix(s.Timestamp, 0).UTC().Format("2006-01")
		net[month] += s.SolChange
	}

	losses := make([]PeriodLoss, 0, len(net))
	for month, change := range net {
		if change >= 0 {
			continue
		}
		loss := PeriodLoss{Month: month, SolLost: round4(-change)}
		if ev, ok := refdata.EventForMonth(month); ok {
			loss.Event = ev.Event
		}
		losses = append(losses, loss)
	}
	sort.Slice(losses, func(i, j int) bool { return losses[i].Month < losses[j].Month })
	return losses
}
