package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/roast"
)

const testWallet = "4Nd1mYvMA1Krk7dv2rB7QYV6mBUcB4ZiCwMQxX1TbGZe"

func sampleResult(wallet string) *analyzer.Result {
	return &analyzer.Result{
		Wallet:           wallet,
		SolBal:           2.5,
		TokenCount:       12,
		TransactionCount: 300,
		FailureRate:      33.3,
		ActivityHeatmap:  map[string]int{"sat_14": 5},
	}
}

func sampleRoast(persona string, score int) *roast.Roast {
	return &roast.Roast{
		Title:            "Exit Liquidity Personified",
		RoastLines:       []string{"line one", "line two"},
		DegenScore:       score,
		ScoreExplanation: "peak degen",
		Summary:          "a cautionary tale",
		Persona:          persona,
		PersonaName:      "Degen Roaster",
		PersonaIcon:      "🦍",
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	SkipIfNoTestDB(t)
	store := NewTestStore(t)
	defer store.Close()
	store.Cleanup(t)

	ctx := context.Background()

	_, err := store.GetAnalysis(ctx, testWallet)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.UpsertAnalysis(ctx, testWallet, sampleResult(testWallet)))

	stored, err := store.GetAnalysis(ctx, testWallet)
	require.NoError(t, err)
	assert.Equal(t, testWallet, stored.Wallet)
	assert.Equal(t, 2.5, stored.Analysis.SolBal)
	assert.Equal(t, 33.3, stored.Analysis.FailureRate)
	assert.Equal(t, map[string]int{"sat_14": 5}, stored.Analysis.ActivityHeatmap)
	assert.WithinDuration(t, time.Now(), stored.AnalyzedAt, time.Minute)
}

func TestUpsertReplacesAnalysis(t *testing.T) {
	SkipIfNoTestDB(t)
	store := NewTestStore(t)
	defer store.Close()
	store.Cleanup(t)

	ctx := context.Background()

	require.NoError(t, store.UpsertAnalysis(ctx, testWallet, sampleResult(testWallet)))

	updated := sampleResult(testWallet)
	updated.SolBal = 9.0
	require.NoError(t, store.UpsertAnalysis(ctx, testWallet, updated))

	stored, err := store.GetAnalysis(ctx, testWallet)
	require.NoError(t, err)
	assert.Equal(t, 9.0, stored.Analysis.SolBal)
}

func TestGetFreshAnalysisTTL(t *testing.T) {
	SkipIfNoTestDB(t)
	store := NewTestStore(t)
	defer store.Close()
	store.Cleanup(t)

	ctx := context.Background()
	require.NoError(t, store.UpsertAnalysis(ctx, testWallet, sampleResult(testWallet)))

	_, err := store.GetFreshAnalysis(ctx, testWallet, 24*time.Hour)
	assert.NoError(t, err)

	// A zero TTL makes any row stale.
	_, err = store.GetFreshAnalysis(ctx, testWallet, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndListRoasts(t *testing.T) {
	SkipIfNoTestDB(t)
	store := NewTestStore(t)
	defer store.Close()
	store.Cleanup(t)

	ctx := context.Background()

	id1, err := store.SaveRoast(ctx, testWallet, sampleRoast("degen", 87))
	require.NoError(t, err)
	id2, err := store.SaveRoast(ctx, "otherwallet11111111111111111111111111111111", sampleRoast("gordon", 55))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	recent, err := store.RecentRoasts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, id2, recent[0].ID)
	assert.Equal(t, "gordon", recent[0].Roast.Persona)
	assert.Equal(t, "Exit Liquidity Personified", recent[0].Roast.Title)

	mine, err := store.RoastsForWallet(ctx, testWallet, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, id1, mine[0].ID)
}

func TestStats(t *testing.T) {
	SkipIfNoTestDB(t)
	store := NewTestStore(t)
	defer store.Close()
	store.Cleanup(t)

	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalRoasts)
	assert.Equal(t, 0.0, stats.AvgDegenScore)

	_, err = store.SaveRoast(ctx, testWallet, sampleRoast("degen", 80))
	require.NoError(t, err)
	_, err = store.SaveRoast(ctx, testWallet, sampleRoast("gordon", 60))
	require.NoError(t, err)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRoasts)
	assert.Equal(t, int64(1), stats.UniqueWallets)
	assert.Equal(t, 70.0, stats.AvgDegenScore)
}

func TestStaleWallets(t *testing.T) {
	SkipIfNoTestDB(t)
	store := NewTestStore(t)
	defer store.Close()
	store.Cleanup(t)

	ctx := context.Background()
	require.NoError(t, store.UpsertAnalysis(ctx, testWallet, sampleResult(testWallet)))

	// Fresh rows are not stale.
	stale, err := store.StaleWallets(ctx, time.Hour, 10)
	require.NoError(t, err)
	assert.Empty(t, stale)

	// With a zero TTL every row qualifies.
	stale, err = store.StaleWallets(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{testWallet}, stale)
}
