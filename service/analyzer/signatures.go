package analyzer

import (
	"sort"
	"time"

	"github.com/brojonat/solroast/service/solana"
)

const (
	// burstWindow and burstSize define a burst: burstSize consecutive
	// transactions inside burstWindow.
	burstWindow = 300 * time.Second
	burstSize   = 5
)

// signatureStats summarizes the raw signature list.
type signatureStats struct {
	Total            int
	Failed           int
	FirstTS          *int64
	LastTS           *int64
	LateNightTxs     int
	BurstCount       int
	HourDistribution map[int]int
}

// analyzeSignatures computes count, failure, time-of-day and burst
// statistics over a signature list. Entries without a block time count
// toward totals but not toward the temporal stats.
func analyzeSignatures(sigs []solana.SignatureRecord) signatureStats {
	stats := signatureStats{
		HourDistribution: make(map[int]int),
	}
	if len(sigs) == 0 {
		return stats
	}

	stats.Total = len(sigs)
	timestamps := make([]int64, 0, len(sigs))
	for _, sig := range sigs {
		if sig.Failed {
			stats.Failed++
		}
		if sig.BlockTime == nil {
			continue
		}
		ts := *sig.BlockTime
		timestamps = append(timestamps, ts)

		hour := time.Unix(ts, 0).UTC().Hour()
		stats.HourDistribution[hour]++
		if hour < 6 {
			stats.LateNightTxs++
		}
	}
	if len(timestamps) == 0 {
		return stats
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	first, last := timestamps[0], timestamps[len(timestamps)-1]
	stats.FirstTS = &first
	stats.LastTS = &last

	// Overlapping windows each count.
	windowSecs := int64(burstWindow / time.Second)
	for i := 0; i+burstSize < len(timestamps); i++ {
		if timestamps[i+burstSize]-timestamps[i] <= windowSecs {
			stats.BurstCount++
		}
	}
	return stats
}

// txsPerDay is the average transaction rate over the observed span,
// with a one-day floor so short-lived wallets don't divide by zero.
func txsPerDay(stats signatureStats) float64 {
	if stats.Total == 0 || stats.FirstTS == nil || stats.LastTS == nil {
		return 0
	}
	spanDays := float64(*stats.LastTS-*stats.FirstTS) / 86400
	if spanDays < 1 {
		spanDays = 1
	}
	return float64(stats.Total) / spanDays
}

// failureRate is the failed share as a percentage rounded to one
// decimal place.
func failureRate(failed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(failed) / float64(total) * 100)
}
