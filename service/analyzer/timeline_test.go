package analyzer

import (
	"testing"
	"time"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlySigs(t time.Time, count int, prefix string) []solana.SignatureRecord {
	var sigs []solana.SignatureRecord
	for i := 0; i < count; i++ {
		ts := t.Add(time.Duration(i) * time.Hour).Unix()
		sigs = append(sigs, sig(prefix+string(rune('a'+i)), ts, false))
	}
	return sigs
}

func TestAnalyzeTimeline_Empty(t *testing.T) {
	result := analyzeTimeline(nil)
	assert.Empty(t, result.ActivePeriods)
	assert.Nil(t, result.PeakActivityPeriod)
	assert.Nil(t, result.JoinedDuring)
}

func TestAnalyzeTimeline_MarketEventsAndGaps(t *testing.T) {
	nov2022 := time.Date(2022, 11, 15, 0, 0, 0, 0, time.UTC)
	jan2024 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	sigs := append(monthlySigs(nov2022, 10, "nov"), monthlySigs(jan2024, 20, "jan")...)
	result := analyzeTimeline(sigs)

	assert.Equal(t, []string{"2022-11", "2024-01"}, result.ActivePeriods)

	require.NotNil(t, result.PeakActivityPeriod)
	assert.Equal(t, "2024-01", result.PeakActivityPeriod.Period)
	assert.Equal(t, 20, result.PeakActivityPeriod.TxCount)

	require.NotNil(t, result.JoinedDuring)
	assert.Equal(t, "2022-11", result.JoinedDuring.Period)
	assert.Contains(t, result.JoinedDuring.Event, "FTX")

	require.NotEmpty(t, result.InactiveGaps)
	gap := result.InactiveGaps[0]
	assert.Equal(t, "2022-11", gap.From)
	assert.Equal(t, "2024-01", gap.To)
	assert.GreaterOrEqual(t, gap.Months, 12)
	// The BONK airdrop happened inside the gap.
	assert.Contains(t, gap.EventMissed, "BONK")
}

func TestAnalyzeTimeline_JoinedAtTop(t *testing.T) {
	nov2021 := time.Date(2021, 11, 10, 0, 0, 0, 0, time.UTC)
	result := analyzeTimeline(monthlySigs(nov2021, 5, "s"))

	require.NotNil(t, result.JoinedDuring)
	assert.Equal(t, "2021-11", result.JoinedDuring.Period)
	assert.Equal(t, "Bought the absolute top", result.JoinedDuring.Roast)
}

func TestBuildNetWorthTimelineRaw_Empty(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, buildNetWorthTimelineRaw(nil, nil, "W", now))
}

func TestBuildNetWorthTimelineRaw_Basic(t *testing.T) {
	jan2024 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	series := buildNetWorthTimelineRaw(monthlySigs(jan2024, 5, "s"), nil, "W", now)
	require.Len(t, series, 4) // 2024-01 .. 2024-04, contiguous

	assert.Equal(t, "2024-01", series[0].Month)
	assert.Equal(t, 5, series[0].TxCount)
	assert.Equal(t, 95.0, series[0].SolPriceUSD)

	for i := 1; i < len(series); i++ {
		assert.Equal(t, nextMonth(series[i-1].Month), series[i].Month)
		assert.Equal(t, 0, series[i].TxCount)
	}
	assert.Equal(t, "2024-04", series[len(series)-1].Month)
}

func TestBuildNetWorthTimelineRaw_WithSampledBalances(t *testing.T) {
	ts := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	wallet := "WALLETxyz"

	sigs := []solana.SignatureRecord{sig("s1", ts.Unix(), false)}
	txs := []*solana.ParsedTransaction{
		{
			BlockTime:    ts,
			AccountKeys:  []string{wallet},
			PostBalances: []uint64{5_000_000_000},
		},
	}
	series := buildNetWorthTimelineRaw(sigs, txs, wallet, now)
	require.NotEmpty(t, series)

	assert.Equal(t, "2024-03", series[0].Month)
	assert.Equal(t, 5.0, series[0].EstimatedSol)
	assert.Equal(t, 5.0*185.0, series[0].EstimatedUSD)

	// Forward-filled months keep the last known balance.
	assert.Equal(t, 5.0, series[1].EstimatedSol)
}

func TestBuildNetWorthTimelineEnhanced_BackwardWalk(t *testing.T) {
	wallet := "WALLETxyz"
	mar := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC)

	sigs := []solana.SignatureRecord{
		sig("s1", mar.Unix(), false),
		sig("s2", apr.Unix(), false),
	}
	txs := []helius.Transaction{
		{
			Signature: "s2",
			Timestamp: apr.Unix(),
			FeePayer:  wallet,
			Fee:       5000,
			NativeTransfers: []helius.NativeTransfer{
				// Wallet received 2 SOL in April.
				{FromUserAccount: "friend", ToUserAccount: wallet, Amount: 2_000_000_000},
			},
		},
		{
			Signature: "s1",
			Timestamp: mar.Unix(),
			FeePayer:  wallet,
			Fee:       5000,
			NativeTransfers: []helius.NativeTransfer{
				// Wallet sent 1 SOL in March.
				{FromUserAccount: wallet, ToUserAccount: "shop", Amount: 1_000_000_000},
			},
		},
	}

	series := buildNetWorthTimelineEnhanced(txs, sigs, wallet, 10.0, now)
	require.Len(t, series, 2)

	// April snapshot is the anchored current balance; March is the
	// balance after undoing April's incoming transfer and fee.
	assert.Equal(t, "2024-03", series[0].Month)
	assert.InDelta(t, 10.0-2.0+0.000005, series[0].EstimatedSol, 1e-4)
	assert.Equal(t, "2024-04", series[1].Month)
	assert.Equal(t, 10.0, series[1].EstimatedSol)
}

func TestMonthsApart(t *testing.T) {
	assert.Equal(t, 14, monthsApart("2022-11", "2024-01"))
	assert.Equal(t, 1, monthsApart("2024-01", "2024-02"))
	assert.Equal(t, 0, monthsApart("2024-01", "2024-01"))
}
