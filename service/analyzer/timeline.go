package analyzer

import (
	"sort"
	"strings"
	"time"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
)

// timelineResult summarizes activity by calendar month against the
// market event table.
type timelineResult struct {
	ActivePeriods      []string
	JoinedDuring       *JoinedDuring
	PeakActivityPeriod *PeakActivity
	InactiveGaps       []InactiveGap
}

func monthOf(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01")
}

func parseMonth(month string) time.Time {
	t, _ := time.Parse("2006-01", month)
	return t
}

// monthsApart returns the number of calendar month steps from a to b.
func monthsApart(a, b string) int {
	ta, tb := parseMonth(a), parseMonth(b)
	return (tb.Year()-ta.Year())*12 + int(tb.Month()) - int(ta.Month())
}

func nextMonth(month string) string {
	return parseMonth(month).AddDate(0, 1, 0).Format("2006-01")
}

// analyzeTimeline buckets signatures by month and annotates the
// first-active, peak-activity and inactive-gap periods with market
// events.
func analyzeTimeline(sigs []solana.SignatureRecord) timelineResult {
	result := timelineResult{ActivePeriods: []string{}, InactiveGaps: []InactiveGap{}}

	counts := make(map[string]int)
	for _, sig := range sigs {
		if sig.BlockTime == nil {
			continue
		}
		counts[monthOf(*sig.BlockTime)]++
	}
	if len(counts) == 0 {
		return result
	}

	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)
	result.ActivePeriods = months

	joined := &JoinedDuring{Period: months[0]}
	if ev, ok := refdata.EventForMonth(months[0]); ok {
		joined.Event = ev.Event
		joined.Sentiment = ev.Sentiment
		joined.Roast = refdata.JoinedRoast(ev.Sentiment)
	}
	result.JoinedDuring = joined

	peak := &PeakActivity{}
	for _, m := range months {
		if counts[m] > peak.TxCount {
			peak.Period = m
			peak.TxCount = counts[m]
		}
	}
	if ev, ok := refdata.EventForMonth(peak.Period); ok {
		peak.Event = ev.Event
	}
	result.PeakActivityPeriod = peak

	for i := 1; i < len(months); i++ {
		apart := monthsApart(months[i-1], months[i])
		if apart <= 1 {
			continue
		}
		gap := InactiveGap{
			From:   months[i-1],
			To:     months[i],
			Months: apart - 1,
		}
		var missed []string
		for m := nextMonth(months[i-1]); m != months[i]; m = nextMonth(m) {
			if ev, ok := refdata.EventForMonth(m); ok {
				missed = append(missed, ev.Event)
			}
		}
		gap.EventMissed = strings.Join(missed, "; ")
		result.InactiveGaps = append(result.InactiveGaps, gap)
	}
	return result
}

// monthSnapshot records the balance observed for a month before the
// series is made contiguous.
type monthSnapshot struct {
	balance float64
	known   bool
}

// buildNetWorthTimelineRaw builds the monthly balance series from
// sampled transaction bodies: each sampled body's post-balance for the
// wallet is taken as that month's absolute snapshot, and unsampled
// months forward-fill from the last known one. Strictly less accurate
// than the enhanced walk; used when the enhanced source is unavailable.
func buildNetWorthTimelineRaw(sigs []solana.SignatureRecord, txs []*solana.ParsedTransaction, wallet string, now time.Time) []MonthlyBalance {
	txCounts := make(map[string]int)
	for _, sig := range sigs {
		if sig.BlockTime == nil {
			continue
		}
		txCounts[monthOf(*sig.BlockTime)]++
	}
	if len(txCounts) == 0 {
		return []MonthlyBalance{}
	}

	snapshots := make(map[string]monthSnapshot)
	for _, tx := range txs {
		if tx == nil || tx.BlockTime.IsZero() {
			continue
		}
		for i, key := range tx.AccountKeys {
			if key != wallet || i >= len(tx.PostBalances) {
				continue
			}
			month := tx.BlockTime.UTC().Format("2006-01")
			snapshots[month] = monthSnapshot{
				balance: float64(tx.PostBalances[i]) / solana.LamportsPerSOL,
				known:   true,
			}
			break
		}
	}

	return assembleTimeline(txCounts, snapshots, now)
}

// buildNetWorthTimelineEnhanced walks enriched transactions newest to
// oldest, anchored to the verified current balance, undoing each
// transaction's native flow (including wrapped SOL and fees paid by the
// wallet) to reconstruct the balance at every transaction boundary.
// Each month's snapshot is the balance after its newest transaction.
func buildNetWorthTimelineEnhanced(txs []helius.Transaction, sigs []solana.SignatureRecord, wallet string, currentBalance float64, now time.Time) []MonthlyBalance {
	txCounts := make(map[string]int)
	for _, sig := range sigs {
		if sig.BlockTime == nil {
			continue
		}
		txCounts[monthOf(*sig.BlockTime)]++
	}
	for i := range txs {
		if txs[i].Timestamp > 0 {
			txCounts[monthOf(txs[i].Timestamp)] = max(txCounts[monthOf(txs[i].Timestamp)], 1)
		}
	}
	if len(txCounts) == 0 {
		return []MonthlyBalance{}
	}

	ordered := make([]helius.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Timestamp > ordered[j].Timestamp })

	snapshots := make(map[string]monthSnapshot)
	running := currentBalance
	for i := range ordered {
		tx := &ordered[i]
		if tx.Timestamp <= 0 {
			continue
		}
		month := monthOf(tx.Timestamp)
		if _, seen := snapshots[month]; !seen {
			snapshots[month] = monthSnapshot{balance: running, known: true}
		}

		// Undo this transaction to get the balance immediately before it.
		for _, nt := range tx.NativeTransfers {
			if nt.ToUserAccount == wallet {
				running -= float64(nt.Amount) / solana.LamportsPerSOL
			}
			if nt.FromUserAccount == wallet {
				running += float64(nt.Amount) / solana.LamportsPerSOL
			}
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Mint != solMint {
				continue
			}
			if tt.ToUserAccount == wallet {
				running -= tt.TokenAmount
			}
			if tt.FromUserAccount == wallet {
				running += tt.TokenAmount
			}
		}
		if tx.FeePayer == wallet {
			running += float64(tx.Fee) / solana.LamportsPerSOL
		}
	}

	return assembleTimeline(txCounts, snapshots, now)
}

// assembleTimeline emits one record per month from first activity
// through the current month, forward-filling balances for months with
// no snapshot.
func assembleTimeline(txCounts map[string]int, snapshots map[string]monthSnapshot, now time.Time) []MonthlyBalance {
	months := make([]string, 0, len(txCounts))
	for m := range txCounts {
		months = append(months, m)
	}
	sort.Strings(months)

	first := months[0]
	current := now.UTC().Format("2006-01")
	if current < first {
		current = first
	}

	var series []MonthlyBalance
	balance := 0.0
	for m := first; ; m = nextMonth(m) {
		if snap, ok := snapshots[m]; ok && snap.known {
			balance = snap.balance
		}
		price := refdata.PriceForMonth(m)
		series = append(series, MonthlyBalance{
			Month:        m,
			EstimatedSol: round4(balance),
			TxCount:      txCounts[m],
			SolPriceUSD:  price,
			EstimatedUSD: round2(balance * price),
		})
		if m == current {
			break
		}
	}
	return series
}
