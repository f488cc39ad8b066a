package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/metrics"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
)

// SolanaProvider is the raw RPC surface the analyzer consumes.
type SolanaProvider interface {
	GetBalance(ctx context.Context, wallet string) (float64, error)
	GetSignatures(ctx context.Context, wallet string, limit int, before string) ([]solana.SignatureRecord, error)
	GetTransaction(ctx context.Context, signature string) (*solana.ParsedTransaction, error)
	GetTokenAccounts(ctx context.Context, wallet string) ([]solana.TokenAccountBalance, error)
}

// HeliusProvider is the enhanced history surface. Enabled reports
// whether the provider is configured; when false the raw path is used.
type HeliusProvider interface {
	Enabled() bool
	Transactions(ctx context.Context, wallet, before string) ([]helius.Transaction, error)
	GetBalances(ctx context.Context, wallet string) (*helius.Balances, error)
}

// TokenLister returns the current mint metadata snapshot.
type TokenLister interface {
	Get(ctx context.Context) map[string]refdata.TokenInfo
}

// PriceSource returns the current SOL/USD price.
type PriceSource interface {
	CurrentSOLPrice(ctx context.Context) (float64, error)
}

// Options bound the analysis. Zero values fall back to the defaults
// below.
type Options struct {
	Timeout            time.Duration
	SignaturePageLimit int
	MaxSignaturePages  int
	MaxHistoryPages    int
	MaxSampledBodies   int
}

// Analyzer fans out the provider calls, runs the extractors, and
// assembles one Result per wallet.
type Analyzer struct {
	rpc     SolanaProvider
	helius  HeliusProvider
	tokens  TokenLister
	price   PriceSource
	logger  *slog.Logger
	metrics *metrics.Metrics

	timeout            time.Duration
	signaturePageLimit int
	maxSignaturePages  int
	maxHistoryPages    int
	maxSampledBodies   int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Analyzer. helius may be a disabled provider; tokens
// and price may be nil only in tests.
func New(rpc SolanaProvider, hel HeliusProvider, tokens TokenLister, price PriceSource, opts Options, logger *slog.Logger, m *metrics.Metrics) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{
		rpc:                rpc,
		helius:             hel,
		tokens:             tokens,
		price:              price,
		logger:             logger,
		metrics:            m,
		timeout:            opts.Timeout,
		signaturePageLimit: opts.SignaturePageLimit,
		maxSignaturePages:  opts.MaxSignaturePages,
		maxHistoryPages:    opts.MaxHistoryPages,
		maxSampledBodies:   opts.MaxSampledBodies,
		now:                time.Now,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
	if a.timeout <= 0 {
		a.timeout = 90 * time.Second
	}
	if a.signaturePageLimit <= 0 {
		a.signaturePageLimit = 1000
	}
	if a.maxSignaturePages <= 0 {
		a.maxSignaturePages = 5
	}
	if a.maxHistoryPages <= 0 {
		a.maxHistoryPages = 10
	}
	if a.maxSampledBodies <= 0 {
		a.maxSampledBodies = 30
	}
	return a
}

// Analyze runs the full analysis for a pre-validated wallet address.
// "No data" is a valid empty result, never an error; the only error
// surfaced is ErrAnalysisTimeout when the whole-analysis budget lapses.
func (a *Analyzer) Analyze(ctx context.Context, wallet string) (*Result, error) {
	start := a.now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		balance        float64
		solPrice       float64
		sigs           []solana.SignatureRecord
		accounts       []solana.TokenAccountBalance
		tokenList      map[string]refdata.TokenInfo
		heliusBalances *helius.Balances
	)
	heliusAvail := a.helius != nil && a.helius.Enabled()

	// Fan out the independent reads. Each failure degrades to its zero
	// value; one slow or broken provider never aborts the siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bal, err := a.rpc.GetBalance(gctx, wallet)
		if err != nil {
			a.logger.Warn("balance fetch failed", "wallet", wallet, "error", err)
			return nil
		}
		balance = bal
		return nil
	})
	g.Go(func() error {
		if a.price == nil {
			return nil
		}
		price, err := a.price.CurrentSOLPrice(gctx)
		if err != nil {
			a.logger.Warn("price fetch failed", "error", err)
			return nil
		}
		solPrice = price
		return nil
	})
	g.Go(func() error {
		sigs = a.fetchSignaturePages(gctx, wallet)
		return nil
	})
	g.Go(func() error {
		accts, err := a.rpc.GetTokenAccounts(gctx, wallet)
		if err != nil {
			a.logger.Warn("token accounts fetch failed", "wallet", wallet, "error", err)
			return nil
		}
		accounts = accts
		return nil
	})
	g.Go(func() error {
		if a.tokens == nil {
			tokenList = map[string]refdata.TokenInfo{}
			return nil
		}
		tokenList = a.tokens.Get(gctx)
		return nil
	})
	if heliusAvail {
		g.Go(func() error {
			b, err := a.helius.GetBalances(gctx, wallet)
			if err != nil {
				a.logger.Warn("helius balances fetch failed", "wallet", wallet, "error", err)
				return nil
			}
			heliusBalances = b
			return nil
		})
	}
	g.Wait()

	if err := timeoutErr(ctx); err != nil {
		a.metrics.RecordAnalysis("timeout", "none", a.now().Sub(start).Seconds())
		return nil, err
	}

	// History: prefer the enhanced path whenever it is configured and
	// returns at least one record.
	var (
		source       = "raw"
		heliusTxs    []helius.Transaction
		sampledTxs   []*solana.ParsedTransaction
		enhancedPath bool
	)
	if heliusAvail {
		heliusTxs = a.fetchEnhancedHistory(ctx, wallet)
		enhancedPath = len(heliusTxs) > 0
	}
	if enhancedPath {
		source = "helius"
	} else {
		sampled := sampleSignatures(sigs, a.maxSampledBodies)
		sampledTxs = a.fetchSampledBodies(ctx, wallet, sampled)
	}
	a.metrics.RecordHistorySource(source)
	a.metrics.RecordSignatureCount(len(sigs))

	if err := timeoutErr(ctx); err != nil {
		a.metrics.RecordAnalysis("timeout", source, a.now().Sub(start).Seconds())
		return nil, err
	}

	result := a.assemble(wallet, balance, solPrice, sigs, accounts, tokenList, heliusTxs, sampledTxs, heliusBalances, enhancedPath, heliusAvail)
	a.metrics.RecordAnalysis("ok", source, a.now().Sub(start).Seconds())
	a.metrics.RecordSwapCount(result.TotalSwapsDetected)
	return result, nil
}

func timeoutErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrAnalysisTimeout
	}
	return ctx.Err()
}

func (a *Analyzer) assemble(
	wallet string,
	balance, solPrice float64,
	sigs []solana.SignatureRecord,
	accounts []solana.TokenAccountBalance,
	tokenList map[string]refdata.TokenInfo,
	heliusTxs []helius.Transaction,
	sampledTxs []*solana.ParsedTransaction,
	heliusBalances *helius.Balances,
	enhancedPath, heliusAvail bool,
) *Result {
	now := a.now()

	sigStats := analyzeSignatures(sigs)
	holdings := analyzeTokens(accounts, tokenList)
	graveyard := analyzeGraveyard(accounts, tokenList)
	timeline := analyzeTimeline(sigs)
	heatmap := buildActivityHeatmap(sigs)

	var swaps []Swap
	var protocolStats []ProtocolStat
	var heliusStats heliusTxStats
	var timelineSeries []MonthlyBalance
	if enhancedPath {
		swaps = extractSwapsFromHelius(heliusTxs, wallet, tokenList)
		heliusStats = analyzeHeliusTxs(heliusTxs)
		protocolStats = heliusStats.ProtocolStats
		timelineSeries = buildNetWorthTimelineEnhanced(heliusTxs, sigs, wallet, balance, now)
	} else {
		for _, tx := range sampledTxs {
			swaps = append(swaps, extractSwapsFromTx(tx, wallet, tokenList)...)
		}
		protocolStats = buildProtocolStats(sampledTxs)
		timelineSeries = buildNetWorthTimelineRaw(sigs, sampledTxs, wallet, now)
	}
	swapSummary := analyzeSwaps(swaps)

	protocolsUsed := make([]string, 0, len(protocolStats))
	for _, p := range protocolStats {
		protocolsUsed = append(protocolsUsed, p.Name)
	}

	known, dust := 0, 0
	for _, h := range holdings {
		if h.IsKnown {
			known++
		}
		if h.Amount < 1 {
			dust++
		}
	}

	result := &Result{
		Wallet:   wallet,
		SolBal:   round4(balance),
		SolUSD:   round2(balance * solPrice),
		SolPrice: round2(solPrice),

		TokenCount:      len(holdings),
		KnownTokenCount: known,
		ShitcoinCount:   len(holdings) - known,
		DustTokens:      dust,
		TopTokens:       topN(holdings, 10),
		HeliusTokens:    buildHeliusTokens(heliusBalances),

		TransactionCount:   sigStats.Total,
		FailedTransactions: sigStats.Failed,
		FailureRate:        failureRate(sigStats.Failed, sigStats.Total),
		TxsPerDay:          round2(txsPerDay(sigStats)),
		LateNightTxs:       sigStats.LateNightTxs,
		BurstCount:         sigStats.BurstCount,

		SwapCount:     heliusStats.SwapCount,
		ProtocolsUsed: protocolsUsed,
		NFTActivity:   heliusStats.NFTActivity,
		TxTypes:       heliusStats.TxTypes,

		EstimatedPnlSol:    swapSummary.EstimatedPnlSol,
		TotalSwapsDetected: swapSummary.TotalSwapsDetected,
		WinRate:            swapSummary.WinRate,
		TotalSolVolume:     swapSummary.TotalSolVolume,
		BiggestLoss:        swapSummary.BiggestLoss,
		BiggestWin:         swapSummary.BiggestWin,

		JoinedDuring:       timeline.JoinedDuring,
		PeakActivityPeriod: timeline.PeakActivityPeriod,
		InactiveGaps:       timeline.InactiveGaps,

		GraveyardTokens: graveyard.GraveyardTokens,
		GraveyardNames:  graveyard.GraveyardNames,

		NetWorthTimeline: timelineSeries,
		ProtocolStats:    protocolStats,
		LossByToken:      buildLossByToken(swaps),
		LossByPeriod:     buildLossByPeriod(swaps),
		ActivityHeatmap:  heatmap,

		HasHelius: heliusAvail,
	}
	if result.TxTypes == nil {
		result.TxTypes = map[string]int{}
	}

	if sigStats.FirstTS != nil {
		age := int(now.Sub(time.Unix(*sigStats.FirstTS, 0)).Hours() / 24)
		result.WalletAgeDays = &age
		first := time.Unix(*sigStats.FirstTS, 0).UTC().Format(time.RFC3339)
		result.FirstTxDate = &first
	}

	result.IsEmpty = result.SolBal == 0 && result.TokenCount == 0 && result.TransactionCount == 0
	return result
}

func topN(holdings []TokenHolding, n int) []TokenHolding {
	if len(holdings) > n {
		holdings = holdings[:n]
	}
	return holdings
}

// heliusTxStats summarizes the enhanced records the way the enriched
// API classifies them.
type heliusTxStats struct {
	SwapCount     int
	NFTActivity   int
	TxTypes       map[string]int
	ProtocolStats []ProtocolStat
}

func analyzeHeliusTxs(txs []helius.Transaction) heliusTxStats {
	stats := heliusTxStats{TxTypes: make(map[string]int)}
	sourceCounts := make(map[string]int)
	tagged := 0
	for i := range txs {
		tx := &txs[i]
		typ := tx.Type
		if typ == "" {
			typ = "UNKNOWN"
		}
		stats.TxTypes[typ]++

		switch typ {
		case "SWAP", "TOKEN_SWAP":
			stats.SwapCount++
		case "NFT_MINT", "NFT_SALE", "NFT_BID", "COMPRESSED_NFT_MINT":
			stats.NFTActivity++
		}

		name := protocolNameFromSource(tx.Source)
		if name == "" {
			// Fall back to instruction program ids when the provider
			// has no source attribution.
			seen := make(map[string]bool)
			for _, inst := range tx.Instructions {
				if n, ok := protocolRegistry[inst.ProgramID]; ok {
					seen[n] = true
				}
				for _, inner := range inst.InnerInstructions {
					if n, ok := protocolRegistry[inner.ProgramID]; ok {
						seen[n] = true
					}
				}
			}
			if len(seen) == 0 {
				continue
			}
			tagged++
			for n := range seen {
				sourceCounts[n]++
			}
			continue
		}
		tagged++
		sourceCounts[name]++
	}
	stats.ProtocolStats = protocolStatsFromCounts(sourceCounts, tagged)
	return stats
}
