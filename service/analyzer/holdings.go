package analyzer

import (
	"sort"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
)

const (
	// unknownSymbol labels mints absent from the token list.
	unknownSymbol = "SHITCOIN"

	// graveyardDustThreshold marks known tokens held in negligible
	// amounts as abandoned.
	graveyardDustThreshold = 0.01

	// maxGraveyardNames caps the sample list returned for display.
	maxGraveyardNames = 10

	// maxHeliusTokens caps the enhanced-balances list in the result.
	maxHeliusTokens = 10
)

// graveyardAllowList holds legitimate low-balance assets that never
// count as graveyard: wrapped SOL and the major stablecoins.
var graveyardAllowList = map[string]bool{
	"So11111111111111111111111111111111111111112":  true, // wSOL
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": true, // USDC
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": true, // USDT
}

// analyzeTokens resolves each positive-amount holding against the token
// list and returns them sorted descending by amount.
func analyzeTokens(accounts []solana.TokenAccountBalance, tokenList map[string]refdata.TokenInfo) []TokenHolding {
	holdings := make([]TokenHolding, 0, len(accounts))
	for _, acct := range accounts {
		if acct.Amount <= 0 {
			continue
		}
		holding := TokenHolding{
			Mint:     acct.Mint,
			Amount:   acct.Amount,
			Decimals: acct.Decimals,
			Symbol:   unknownSymbol,
		}
		if info, ok := tokenList[acct.Mint]; ok {
			holding.Symbol = info.Symbol
			holding.IsKnown = true
		}
		holdings = append(holdings, holding)
	}
	sort.SliceStable(holdings, func(i, j int) bool { return holdings[i].Amount > holdings[j].Amount })
	return holdings
}

// buildHeliusTokens projects the enhanced balances into the result's
// helius_tokens list, capped at maxHeliusTokens. The list is empty,
// never nil, when the endpoint returned nothing.
func buildHeliusTokens(balances *helius.Balances) []HeliusToken {
	if balances == nil || len(balances.Tokens) == 0 {
		return []HeliusToken{}
	}
	tokens := make([]HeliusToken, 0, len(balances.Tokens))
	for _, tok := range balances.Tokens {
		symbol := tok.Symbol
		if symbol == "" {
			symbol = "UNKNOWN"
		}
		tokens = append(tokens, HeliusToken{
			Mint:   tok.Mint,
			Amount: tok.Amount,
			Symbol: symbol,
		})
	}
	if len(tokens) > maxHeliusTokens {
		tokens = tokens[:maxHeliusTokens]
	}
	return tokens
}

// graveyardResult counts abandoned tokens: unknown mints with any
// positive balance, and known mints held in dust amounts that aren't
// allow-listed.
type graveyardResult struct {
	GraveyardTokens int
	GraveyardNames  []string
}

func analyzeGraveyard(accounts []solana.TokenAccountBalance, tokenList map[string]refdata.TokenInfo) graveyardResult {
	result := graveyardResult{GraveyardNames: []string{}}
	for _, acct := range accounts {
		if acct.Amount <= 0 || graveyardAllowList[acct.Mint] {
			continue
		}
		info, known := tokenList[acct.Mint]

		var name string
		switch {
		case !known:
			name = shortMint(acct.Mint)
		case acct.Amount < graveyardDustThreshold:
			name = info.Symbol
		default:
			continue
		}

		result.GraveyardTokens++
		if len(result.GraveyardNames) < maxGraveyardNames {
			result.GraveyardNames = append(result.GraveyardNames, name)
		}
	}
	return result
}

func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:8] + "..."
}
