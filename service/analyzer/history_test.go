package analyzer

import (
	"fmt"
	"testing"
	"time"

	"github.com/brojonat/solroast/service/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// historySigs builds a newest-first signature list with one entry per
// day over the given months.
func historySigs(start time.Time, months, perMonth int) []solana.SignatureRecord {
	var sigs []solana.SignatureRecord
	for m := 0; m < months; m++ {
		for d := 0; d < perMonth; d++ {
			ts := start.AddDate(0, m, d).Unix()
			sigs = append(sigs, sig(fmt.Sprintf("m%dd%d", m, d), ts, false))
		}
	}
	// Newest first, as providers return them.
	for i, j := 0, len(sigs)-1; i < j; i, j = i+1, j-1 {
		sigs[i], sigs[j] = sigs[j], sigs[i]
	}
	return sigs
}

func TestSampleSignatures_Empty(t *testing.T) {
	assert.Empty(t, sampleSignatures(nil, 30))
	assert.Empty(t, sampleSignatures([]solana.SignatureRecord{sig("a", 1000, false)}, 0))
}

func TestSampleSignatures_SmallHistoryKeepsRecent(t *testing.T) {
	sigs := []solana.SignatureRecord{
		sig("c", 3000, false),
		sig("b", 2000, false),
		sig("a", 1000, false),
	}
	sampled := sampleSignatures(sigs, 30)
	// All three are within the recent window; the remaining month
	// representative set is empty because they're all already chosen.
	require.Len(t, sampled, 3)
	assert.Equal(t, "c", sampled[0].Signature)
}

func TestSampleSignatures_RecentPlusMonthly(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sigs := historySigs(start, 6, 10) // 60 sigs over 6 months

	sampled := sampleSignatures(sigs, 30)
	require.NotEmpty(t, sampled)
	assert.LessOrEqual(t, len(sampled), 30)

	// The newest signatures are always present.
	assert.Equal(t, sigs[0].Signature, sampled[0].Signature)
	assert.Equal(t, sigs[9].Signature, sampled[9].Signature)

	// Month representatives are the oldest signature of each month not
	// already covered by the recent window.
	months := make(map[string]bool)
	for _, rec := range sampled[recentBodyCount:] {
		month := monthOf(*rec.BlockTime)
		assert.False(t, months[month], "duplicate month representative %s", month)
		months[month] = true
	}
	assert.True(t, months["2024-01"])
}

func TestSampleSignatures_CapRespected(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	sigs := historySigs(start, 60, 5) // 5 years of months

	sampled := sampleSignatures(sigs, 30)
	assert.Len(t, sampled, 30)
}

func TestSubsampleMonths(t *testing.T) {
	months := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}

	// Under budget: untouched.
	assert.Equal(t, months, subsampleMonths(months, 10))

	// Over budget: evenly spaced, endpoints kept.
	picked := subsampleMonths(months, 3)
	require.Len(t, picked, 3)
	assert.Equal(t, "2024-01", picked[0])
	assert.Equal(t, "2024-06", picked[len(picked)-1])

	assert.Equal(t, []string{"2024-01"}, subsampleMonths(months, 1))
}
