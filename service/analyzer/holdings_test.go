package analyzer

import (
	"fmt"
	"testing"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func bonkList() map[string]refdata.TokenInfo {
	return map[string]refdata.TokenInfo{
		bonkMint: {Symbol: "BONK", Name: "Bonk"},
	}
}

func TestAnalyzeTokens(t *testing.T) {
	accounts := []solana.TokenAccountBalance{
		{Mint: bonkMint, Amount: 1000000, Decimals: 5},
		{Mint: "SomeOtherMint123", Amount: 0.0001, Decimals: 9},
		{Mint: "ZeroMint", Amount: 0, Decimals: 9},
	}
	holdings := analyzeTokens(accounts, bonkList())
	require.Len(t, holdings, 2)

	assert.Equal(t, "BONK", holdings[0].Symbol)
	assert.True(t, holdings[0].IsKnown)
	assert.Equal(t, 1000000.0, holdings[0].Amount)

	assert.Equal(t, "SHITCOIN", holdings[1].Symbol)
	assert.False(t, holdings[1].IsKnown)
}

func TestAnalyzeTokens_Empty(t *testing.T) {
	assert.Empty(t, analyzeTokens(nil, map[string]refdata.TokenInfo{}))
}

func TestAnalyzeTokens_SortedDescending(t *testing.T) {
	accounts := []solana.TokenAccountBalance{
		{Mint: "m1", Amount: 5},
		{Mint: "m2", Amount: 500},
		{Mint: "m3", Amount: 50},
	}
	holdings := analyzeTokens(accounts, nil)
	require.Len(t, holdings, 3)
	assert.Equal(t, "m2", holdings[0].Mint)
	assert.Equal(t, "m3", holdings[1].Mint)
	assert.Equal(t, "m1", holdings[2].Mint)
}

func TestAnalyzeGraveyard(t *testing.T) {
	accounts := []solana.TokenAccountBalance{
		// Unknown token with real balance: graveyard.
		{Mint: "DEAD_TOKEN_ABCDEF123", Amount: 50000, Decimals: 9},
		// Known token held as dust: graveyard.
		{Mint: bonkMint, Amount: 0.001, Decimals: 6},
		// Zero balance never counts.
		{Mint: "ZERO_MINT", Amount: 0, Decimals: 9},
	}
	result := analyzeGraveyard(accounts, bonkList())
	assert.Equal(t, 2, result.GraveyardTokens)
	require.Len(t, result.GraveyardNames, 2)
	assert.Contains(t, result.GraveyardNames, "BONK")
}

func TestAnalyzeGraveyard_Empty(t *testing.T) {
	result := analyzeGraveyard(nil, map[string]refdata.TokenInfo{})
	assert.Equal(t, 0, result.GraveyardTokens)
	assert.Empty(t, result.GraveyardNames)
}

func TestAnalyzeGraveyard_AllowListAndHealthyHoldings(t *testing.T) {
	usdc := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	accounts := []solana.TokenAccountBalance{
		// Stablecoin dust is allow-listed.
		{Mint: usdc, Amount: 0.002, Decimals: 6},
		// Known token with a healthy balance is not graveyard.
		{Mint: bonkMint, Amount: 250000, Decimals: 5},
	}
	tokenList := bonkList()
	tokenList[usdc] = refdata.TokenInfo{Symbol: "USDC", Name: "USD Coin"}

	result := analyzeGraveyard(accounts, tokenList)
	assert.Equal(t, 0, result.GraveyardTokens)
}

func TestAnalyzeGraveyard_NameCap(t *testing.T) {
	var accounts []solana.TokenAccountBalance
	for i := 0; i < 25; i++ {
		accounts = append(accounts, solana.TokenAccountBalance{
			Mint:   "UnknownMint_________" + string(rune('a'+i)),
			Amount: 100,
		})
	}
	result := analyzeGraveyard(accounts, nil)
	assert.Equal(t, 25, result.GraveyardTokens)
	assert.Len(t, result.GraveyardNames, maxGraveyardNames)
}

func TestBuildHeliusTokens(t *testing.T) {
	balances := &helius.Balances{
		Tokens: []helius.TokenBalance{
			{Mint: bonkMint, Amount: 5_000_000, Decimals: 5, Symbol: "BONK"},
			{Mint: "MysteryMint111", Amount: 9},
		},
	}
	tokens := buildHeliusTokens(balances)
	require.Len(t, tokens, 2)

	assert.Equal(t, HeliusToken{Mint: bonkMint, Amount: 5_000_000, Symbol: "BONK"}, tokens[0])
	assert.Equal(t, "UNKNOWN", tokens[1].Symbol)
}

func TestBuildHeliusTokens_Capped(t *testing.T) {
	balances := &helius.Balances{}
	for i := 0; i < 15; i++ {
		balances.Tokens = append(balances.Tokens, helius.TokenBalance{
			Mint:   fmt.Sprintf("Mint%02d", i),
			Amount: int64(i),
			Symbol: "TOK",
		})
	}
	tokens := buildHeliusTokens(balances)
	require.Len(t, tokens, maxHeliusTokens)
	assert.Equal(t, "Mint00", tokens[0].Mint)
}

func TestBuildHeliusTokens_Empty(t *testing.T) {
	assert.Empty(t, buildHeliusTokens(nil))
	assert.NotNil(t, buildHeliusTokens(nil))
	assert.Empty(t, buildHeliusTokens(&helius.Balances{NativeBalance: 123}))
}
