package analyzer

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/solana"
)

const (
	// heliusPageSize is the page size the client requests; a shorter
	// page marks the end of history.
	heliusPageSize = helius.PageSize

	// recentBodyCount raw-path signatures always fetched in full for
	// current-state accuracy.
	recentBodyCount = 10

	// bodyFetchSpacing is the minimum delay between sequential raw-path
	// body fetches.
	bodyFetchSpacing = 250 * time.Millisecond
)

// fetchEnhancedHistory pages through the enhanced API with a before
// cursor until a short page, the page cap, or a persistent throttle.
// A partial history is valid output, never an error.
func (a *Analyzer) fetchEnhancedHistory(ctx context.Context, wallet string) []helius.Transaction {
	var all []helius.Transaction
	before := ""
	for page := 0; page < a.maxHistoryPages; page++ {
		txs, err := a.helius.Transactions(ctx, wallet, before)
		if err != nil {
			if errors.Is(err, helius.ErrThrottled) {
				a.logger.Warn("enhanced history throttled, keeping partial history",
					"wallet", wallet, "fetched", len(all))
			} else {
				a.logger.Warn("enhanced history fetch failed", "wallet", wallet, "error", err)
			}
			break
		}
		all = append(all, txs...)
		if len(txs) < heliusPageSize {
			break
		}
		before = txs[len(txs)-1].Signature
	}
	return all
}

// fetchSignaturePages pages through getSignaturesForAddress, newest
// first, deduplicating by signature.
func (a *Analyzer) fetchSignaturePages(ctx context.Context, wallet string) []solana.SignatureRecord {
	var all []solana.SignatureRecord
	seen := make(map[string]bool)
	before := ""
	for page := 0; page < a.maxSignaturePages; page++ {
		recs, err := a.rpc.GetSignatures(ctx, wallet, a.signaturePageLimit, before)
		if err != nil {
			a.logger.Warn("signature page fetch failed, keeping partial list",
				"wallet", wallet, "page", page, "error", err)
			break
		}
		for _, rec := range recs {
			if seen[rec.Signature] {
				continue
			}
			seen[rec.Signature] = true
			all = append(all, rec)
		}
		if len(recs) < a.signaturePageLimit {
			break
		}
		before = recs[len(recs)-1].Signature
	}
	return all
}

// sampleSignatures picks the bounded set of signatures whose full
// bodies are worth fetching on the raw path: the most recent ones for
// current-state accuracy, then one representative per calendar month
// (the oldest in each month), with months evenly subsampled to fit the
// budget while always keeping the first and last active month.
func sampleSignatures(sigs []solana.SignatureRecord, maxBodies int) []solana.SignatureRecord {
	if len(sigs) == 0 || maxBodies <= 0 {
		return nil
	}

	// Providers return newest first.
	recent := sigs
	if len(recent) > recentBodyCount {
		recent = recent[:recentBodyCount]
	}
	sampled := make([]solana.SignatureRecord, 0, maxBodies)
	chosen := make(map[string]bool)
	for _, rec := range recent {
		if len(sampled) >= maxBodies {
			return sampled
		}
		sampled = append(sampled, rec)
		chosen[rec.Signature] = true
	}

	// Oldest signature per month across the remaining history.
	oldestPerMonth := make(map[string]solana.SignatureRecord)
	for _, rec := range sigs {
		if rec.BlockTime == nil || chosen[rec.Signature] {
			continue
		}
		month := monthOf(*rec.BlockTime)
		if cur, ok := oldestPerMonth[month]; !ok || *rec.BlockTime < *cur.BlockTime {
			oldestPerMonth[month] = rec
		}
	}
	months := make([]string, 0, len(oldestPerMonth))
	for m := range oldestPerMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	budget := maxBodies - len(sampled)
	if budget <= 0 || len(months) == 0 {
		return sampled
	}
	for _, m := range subsampleMonths(months, budget) {
		sampled = append(sampled, oldestPerMonth[m])
	}
	return sampled
}

// subsampleMonths evenly picks up to budget months, always keeping the
// first and last.
func subsampleMonths(months []string, budget int) []string {
	if len(months) <= budget {
		return months
	}
	if budget == 1 {
		return months[:1]
	}
	picked := make([]string, 0, budget)
	step := float64(len(months)-1) / float64(budget-1)
	last := -1
	for i := 0; i < budget; i++ {
		idx := int(float64(i)*step + 0.5)
		if idx >= len(months) {
			idx = len(months) - 1
		}
		if idx == last {
			continue
		}
		picked = append(picked, months[idx])
		last = idx
	}
	return picked
}

// fetchSampledBodies retrieves the sampled transaction bodies
// sequentially with an enforced spacing between calls. A throttle stops
// the loop and keeps what was accumulated; individual failures are
// skipped.
func (a *Analyzer) fetchSampledBodies(ctx context.Context, wallet string, sampled []solana.SignatureRecord) []*solana.ParsedTransaction {
	var bodies []*solana.ParsedTransaction
	for i, rec := range sampled {
		if i > 0 {
			if err := a.sleep(ctx, bodyFetchSpacing); err != nil {
				break
			}
		}
		tx, err := a.rpc.GetTransaction(ctx, rec.Signature)
		if err != nil {
			if errors.Is(err, solana.ErrThrottled) {
				a.logger.Warn("body fetch throttled, keeping partial sample",
					"wallet", wallet, "fetched", len(bodies))
				break
			}
			a.logger.Warn("body fetch failed, skipping signature",
				"signature", rec.Signature, "error", err)
			continue
		}
		bodies = append(bodies, tx)
	}
	return bodies
}
