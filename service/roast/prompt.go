package roast

import (
	"fmt"
	"strings"

	"github.com/brojonat/solroast/service/analyzer"
)

// BuildPrompt renders the analysis into the user prompt. Deterministic:
// the same result always produces the same prompt, which keeps tests
// and cache keys stable.
func BuildPrompt(w *analyzer.Result) string {
	var lines []string
	lines = append(lines, "WALLET DATA TO ROAST:\n")

	lines = append(lines, fmt.Sprintf("Wallet: %s", w.Wallet))
	lines = append(lines, fmt.Sprintf("SOL Balance: %v SOL ($%v)", w.SolBal, w.SolUSD))
	lines = append(lines, fmt.Sprintf("SOL Price: $%v", w.SolPrice))
	lines = append(lines, fmt.Sprintf("Total Tokens Held: %d", w.TokenCount))
	lines = append(lines, fmt.Sprintf("Known/Listed Tokens: %d", w.KnownTokenCount))
	lines = append(lines, fmt.Sprintf("Unknown Shitcoins: %d", w.ShitcoinCount))
	lines = append(lines, fmt.Sprintf("Dust Tokens (< 1 unit): %d", w.DustTokens))

	if len(w.TopTokens) > 0 {
		var tokens []string
		for i, t := range w.TopTokens {
			if i == 8 {
				break
			}
			tokens = append(tokens, fmt.Sprintf("%s(%.2f)", t.Symbol, t.Amount))
		}
		lines = append(lines, "Top Tokens: "+strings.Join(tokens, ", "))
	}

	lines = append(lines, fmt.Sprintf("Total Transactions: %d", w.TransactionCount))
	lines = append(lines, fmt.Sprintf("Failed Transactions: %d (%v%% failure rate)", w.FailedTransactions, w.FailureRate))
	lines = append(lines, fmt.Sprintf("Transactions Per Day (avg): %v", w.TxsPerDay))
	lines = append(lines, fmt.Sprintf("Late Night Txs (midnight-5AM UTC): %d", w.LateNightTxs))
	lines = append(lines, fmt.Sprintf("Burst Trading Sessions (5+ txs in 5 min): %d", w.BurstCount))

	if w.WalletAgeDays != nil {
		first := "unknown"
		if w.FirstTxDate != nil {
			first = *w.FirstTxDate
		}
		lines = append(lines, fmt.Sprintf("Wallet Age: %d days (since %s)", *w.WalletAgeDays, first))
	} else {
		lines = append(lines, "Wallet Age: Unknown (possibly brand new)")
	}

	if w.SwapCount > 0 {
		lines = append(lines, fmt.Sprintf("Swaps Detected (recent): %d", w.SwapCount))
	}
	if len(w.ProtocolsUsed) > 0 {
		lines = append(lines, "Protocols Used: "+strings.Join(w.ProtocolsUsed, ", "))
	}
	if w.NFTActivity > 0 {
		lines = append(lines, fmt.Sprintf("NFT Activity: %d NFT transactions", w.NFTActivity))
	}

	lines = append(lines, "\nTRADING HISTORY:")
	lines = append(lines, fmt.Sprintf("- Estimated PnL: %v SOL", w.EstimatedPnlSol))
	lines = append(lines, fmt.Sprintf("- Total Swaps Detected: %d", w.TotalSwapsDetected))
	lines = append(lines, fmt.Sprintf("- Win Rate: %.0f%%", w.WinRate*100))
	lines = append(lines, fmt.Sprintf("- Total SOL Volume: %v SOL moved", w.TotalSolVolume))

	if bl := w.BiggestLoss; bl != nil {
		lines = append(lines, fmt.Sprintf("- Biggest Loss: Spent %v SOL on %s, now worth ~%v SOL (%v%% loss)",
			bl.SolSpent, bl.Token, bl.CurrentValueSol, bl.LossPct))
	}
	if bw := w.BiggestWin; bw != nil {
		lines = append(lines, fmt.Sprintf("- Biggest Win: Sold %s for %v SOL", bw.Token, bw.SolReceived))
	}

	lines = append(lines, "\nTIMELINE:")
	if j := w.JoinedDuring; j != nil {
		event := j.Event
		if event == "" {
			event = "unknown times"
		}
		lines = append(lines, fmt.Sprintf("- Joined during: %s, %s", j.Period, event))
		if j.Roast != "" {
			lines = append(lines, fmt.Sprintf("  (Roast angle: %s)", j.Roast))
		}
	}
	if p := w.PeakActivityPeriod; p != nil {
		event := p.Event
		if event == "" {
			event = "no notable event"
		}
		lines = append(lines, fmt.Sprintf("- Most active: %s (%d txs), %s", p.Period, p.TxCount, event))
	}
	for i, gap := range w.InactiveGaps {
		if i == 3 {
			break
		}
		missed := gap.EventMissed
		if missed == "" {
			missed = "nothing notable"
		}
		lines = append(lines, fmt.Sprintf("- Inactive gap: %s to %s (%d months), missed: %s",
			gap.From, gap.To, gap.Months, missed))
	}

	if w.GraveyardTokens > 0 {
		lines = append(lines, fmt.Sprintf("\nTOKEN GRAVEYARD: %d dead/worthless tokens", w.GraveyardTokens))
		if len(w.GraveyardNames) > 0 {
			names := w.GraveyardNames
			if len(names) > 10 {
				names = names[:10]
			}
			lines = append(lines, "  Dead tokens: "+strings.Join(names, ", "))
		}
	}

	lines = append(lines, "\nROAST ANGLES TO USE:")
	switch {
	case w.EstimatedPnlSol < -1:
		lines = append(lines, "- NET NEGATIVE trader: roast their trading skills mercilessly")
	case w.EstimatedPnlSol > 1:
		lines = append(lines, "- Actually profitable, rare! Acknowledge but find other angles")
	}
	if j := w.JoinedDuring; j != nil {
		switch j.Sentiment {
		case "top signal", "peak euphoria", "peak degen":
			lines = append(lines, "- BOUGHT THE TOP: classic 'buy high' energy")
		}
	}
	for i, gap := range w.InactiveGaps {
		if i == 2 {
			break
		}
		if gap.Months >= 6 {
			lines = append(lines, fmt.Sprintf("- RAGE QUIT for %d months: paper hands confirmed", gap.Months))
		}
	}
	if w.GraveyardTokens >= 5 {
		lines = append(lines, fmt.Sprintf("- %d DEAD TOKENS: portfolio is a museum of bad decisions", w.GraveyardTokens))
	}
	if w.BiggestLoss != nil {
		lines = append(lines, fmt.Sprintf("- Reference the %s loss specifically, make them relive it", w.BiggestLoss.Token))
	}
	if w.IsEmpty {
		lines = append(lines, "\nTHIS IS A GHOST WALLET: 0 SOL, 0 tokens, 0 transactions. Roast accordingly.")
	}

	lines = append(lines, "\nROAST THIS WALLET. Be savage. Be specific. Reference the exact numbers above. Give 4-6 roast lines.")
	return strings.Join(lines, "\n")
}
