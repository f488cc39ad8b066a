package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRPC implements SolanaProvider.
type mockRPC struct {
	balance      float64
	balanceErr   error
	signatures   []solana.SignatureRecord
	transactions map[string]*solana.ParsedTransaction
	accounts     []solana.TokenAccountBalance
}

func (m *mockRPC) GetBalance(ctx context.Context, wallet string) (float64, error) {
	return m.balance, m.balanceErr
}

func (m *mockRPC) GetSignatures(ctx context.Context, wallet string, limit int, before string) ([]solana.SignatureRecord, error) {
	if before != "" {
		return nil, nil
	}
	return m.signatures, nil
}

func (m *mockRPC) GetTransaction(ctx context.Context, signature string) (*solana.ParsedTransaction, error) {
	if tx, ok := m.transactions[signature]; ok {
		return tx, nil
	}
	return nil, errors.New("not found")
}

func (m *mockRPC) GetTokenAccounts(ctx context.Context, wallet string) ([]solana.TokenAccountBalance, error) {
	return m.accounts, nil
}

// mockHelius implements HeliusProvider.
type mockHelius struct {
	enabled      bool
	pages        [][]helius.Transaction
	calls        int
	balances     *helius.Balances
	balanceCalls int
}

func (m *mockHelius) Enabled() bool { return m.enabled }

func (m *mockHelius) Transactions(ctx context.Context, wallet, before string) ([]helius.Transaction, error) {
	if m.calls >= len(m.pages) {
		return nil, nil
	}
	page := m.pages[m.calls]
	m.calls++
	return page, nil
}

func (m *mockHelius) GetBalances(ctx context.Context, wallet string) (*helius.Balances, error) {
	m.balanceCalls++
	if m.balances != nil {
		return m.balances, nil
	}
	return &helius.Balances{}, nil
}

type mockTokens struct{ list map[string]refdata.TokenInfo }

func (m *mockTokens) Get(ctx context.Context) map[string]refdata.TokenInfo {
	if m.list == nil {
		return map[string]refdata.TokenInfo{}
	}
	return m.list
}

type mockPrice struct {
	price float64
	err   error
}

func (m *mockPrice) CurrentSOLPrice(ctx context.Context) (float64, error) {
	return m.price, m.err
}

func newTestAnalyzer(rpc *mockRPC, hel *mockHelius, price *mockPrice) *Analyzer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(rpc, hel, &mockTokens{}, price, Options{}, logger, nil)
	a.now = func() time.Time { return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC) }
	a.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return a
}

func TestAnalyze_BasicRawPath(t *testing.T) {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
	rpc := &mockRPC{
		balance: 1.5,
		signatures: []solana.SignatureRecord{
			sig("c", base+2000, false),
			sig("b", base+1000, true),
			sig("a", base, false),
		},
	}
	a := newTestAnalyzer(rpc, &mockHelius{}, &mockPrice{price: 180})

	result, err := a.Analyze(context.Background(), "WALLETxyz")
	require.NoError(t, err)

	assert.Equal(t, "WALLETxyz", result.Wallet)
	assert.Equal(t, 1.5, result.SolBal)
	assert.Equal(t, 270.0, result.SolUSD)
	assert.Equal(t, 3, result.TransactionCount)
	assert.Equal(t, 1, result.FailedTransactions)
	assert.Equal(t, 33.3, result.FailureRate)
	assert.Equal(t, 0, result.TokenCount)
	assert.False(t, result.IsEmpty)
	assert.False(t, result.HasHelius)
	assert.NotNil(t, result.HeliusTokens)
	assert.Empty(t, result.HeliusTokens)

	require.NotNil(t, result.WalletAgeDays)
	assert.Equal(t, 75, *result.WalletAgeDays)
	require.NotNil(t, result.FirstTxDate)

	// Monthly series is contiguous from first activity to now.
	require.NotEmpty(t, result.NetWorthTimeline)
	assert.Equal(t, "2026-06", result.NetWorthTimeline[0].Month)
	assert.Equal(t, "2026-08", result.NetWorthTimeline[len(result.NetWorthTimeline)-1].Month)
	for i := 1; i < len(result.NetWorthTimeline); i++ {
		assert.Equal(t, nextMonth(result.NetWorthTimeline[i-1].Month), result.NetWorthTimeline[i].Month)
	}
}

func TestAnalyze_EmptyWallet(t *testing.T) {
	a := newTestAnalyzer(&mockRPC{}, &mockHelius{}, &mockPrice{})

	result, err := a.Analyze(context.Background(), "WALLETxyz")
	require.NoError(t, err)

	assert.True(t, result.IsEmpty)
	assert.Equal(t, 0, result.TransactionCount)
	assert.Empty(t, result.NetWorthTimeline)
	assert.Empty(t, result.ProtocolStats)
	assert.Empty(t, result.LossByToken)
	assert.Empty(t, result.LossByPeriod)
	assert.Empty(t, result.ActivityHeatmap)
	assert.NotNil(t, result.TxTypes)
}

func TestAnalyze_DegradedProviders(t *testing.T) {
	rpc := &mockRPC{balanceErr: errors.New("rpc down")}
	a := newTestAnalyzer(rpc, &mockHelius{}, &mockPrice{err: errors.New("price down")})

	result, err := a.Analyze(context.Background(), "WALLETxyz")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.SolBal)
	assert.Equal(t, 0.0, result.SolPrice)
	assert.True(t, result.IsEmpty)
}

func TestAnalyze_EnhancedPathPreferred(t *testing.T) {
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC).Unix()
	rpc := &mockRPC{
		balance:    10,
		signatures: []solana.SignatureRecord{sig("a", base, false)},
	}
	hel := &mockHelius{
		enabled: true,
		pages: [][]helius.Transaction{
			{
				{
					Signature: "a",
					Timestamp: base,
					Type:      "SWAP",
					Source:    "JUPITER",
					NativeTransfers: []helius.NativeTransfer{
						{FromUserAccount: "WALLETxyz", ToUserAccount: "pool", Amount: 2_000_000_000},
					},
					TokenTransfers: []helius.TokenTransfer{
						{FromUserAccount: "pool", ToUserAccount: "WALLETxyz", Mint: "MEME", TokenAmount: 42},
					},
				},
			},
		},
		balances: &helius.Balances{
			Tokens: []helius.TokenBalance{
				{Mint: "MEME", Amount: 42_000_000, Decimals: 6, Symbol: "MEME"},
				{Mint: "NOSYM", Amount: 7},
			},
			NativeBalance: 10_000_000_000,
		},
	}
	a := newTestAnalyzer(rpc, hel, &mockPrice{price: 100})

	result, err := a.Analyze(context.Background(), "WALLETxyz")
	require.NoError(t, err)

	assert.True(t, result.HasHelius)
	assert.Equal(t, 1, result.SwapCount)
	assert.Equal(t, 1, result.TotalSwapsDetected)
	assert.Equal(t, []string{"Jupiter"}, result.ProtocolsUsed)
	assert.Equal(t, 1, result.TxTypes["SWAP"])
	require.NotNil(t, result.BiggestLoss)
	assert.Equal(t, 2.0, result.BiggestLoss.SolSpent)

	assert.Equal(t, 1, hel.balanceCalls)
	require.Len(t, result.HeliusTokens, 2)
	assert.Equal(t, HeliusToken{Mint: "MEME", Amount: 42_000_000, Symbol: "MEME"}, result.HeliusTokens[0])
	assert.Equal(t, "UNKNOWN", result.HeliusTokens[1].Symbol)
}

func TestAnalyze_EnhancedEmptyFallsBackToRaw(t *testing.T) {
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC).Unix()
	rpc := &mockRPC{
		signatures: []solana.SignatureRecord{sig("a", base, false)},
		transactions: map[string]*solana.ParsedTransaction{
			"a": {
				BlockTime:   time.Unix(base, 0),
				ProgramIDs:  []string{jupiterProg},
				AccountKeys: []string{"WALLETxyz"},
				PostTokenBalances: []solana.TokenBalanceEntry{
					{Owner: "WALLETxyz", Mint: "MEME", UIAmount: 42},
				},
				PreBalances:  []uint64{5_000_000_000},
				PostBalances: []uint64{3_000_000_000},
			},
		},
	}
	hel := &mockHelius{enabled: true} // configured but returns nothing
	a := newTestAnalyzer(rpc, hel, &mockPrice{})

	result, err := a.Analyze(context.Background(), "WALLETxyz")
	require.NoError(t, err)

	assert.True(t, result.HasHelius)
	assert.Equal(t, 1, result.TotalSwapsDetected)
	assert.Equal(t, []string{"Jupiter"}, result.ProtocolsUsed)
}

func TestAnalyze_Timeout(t *testing.T) {
	rpc := &mockRPC{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(rpc, &mockHelius{}, &mockTokens{}, &mockPrice{}, Options{Timeout: time.Nanosecond}, logger, nil)

	_, err := a.Analyze(context.Background(), "WALLETxyz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAnalysisTimeout)
}
