// Package analyzer derives a behavioral profile for a Solana wallet
// from raw RPC data and, when configured, the Helius enhanced history
// API. The extractors are pure functions; all I/O happens in the
// history fetcher and the aggregator fan-out.
package analyzer

import "errors"

// ErrAnalysisTimeout indicates the whole analysis exceeded its time
// budget. Distinguished from data errors so callers can report "too
// slow" rather than "broken".
var ErrAnalysisTimeout = errors.New("analysis timed out")

// TokenHolding is one positive-amount token position.
type TokenHolding struct {
	Mint     string  `json:"mint"`
	Amount   float64 `json:"amount"`
	Decimals uint8   `json:"decimals"`
	Symbol   string  `json:"symbol"`
	IsKnown  bool    `json:"is_known"`
}

// HeliusToken is one holding as reported by the enhanced balances
// endpoint. Amount is the raw integer amount.
type HeliusToken struct {
	Mint   string `json:"mint"`
	Amount int64  `json:"amount"`
	Symbol string `json:"symbol"`
}

// SwapLeg is one side of a reconstructed trade.
type SwapLeg struct {
	Mint   string  `json:"mint"`
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// Swap is one reconstructed trade. At least one of TokenIn/TokenOut is
// non-nil; SolChange is the wallet's net SOL delta for the transaction
// (negative = spent).
type Swap struct {
	Timestamp int64    `json:"timestamp"`
	TokenIn   *SwapLeg `json:"token_in"`
	TokenOut  *SwapLeg `json:"token_out"`
	SolChange float64  `json:"sol_change"`
}

// BiggestLoss is the largest single SOL outlay on a token buy. The
// current value is a fixed-percentage heuristic, not a live price
// lookup.
type BiggestLoss struct {
	Token           string  `json:"token"`
	SolSpent        float64 `json:"sol_spent"`
	CurrentValueSol float64 `json:"current_value_sol"`
	LossPct         float64 `json:"loss_pct"`
}

// BiggestWin is the largest single SOL amount received from a sell.
type BiggestWin struct {
	Token       string  `json:"token"`
	SolReceived float64 `json:"sol_received"`
}

// JoinedDuring annotates the wallet's first active month with any
// market event and a canned behavioral label.
type JoinedDuring struct {
	Period    string `json:"period"`
	Event     string `json:"event,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
	Roast     string `json:"roast,omitempty"`
}

// PeakActivity is the month with the most transactions.
type PeakActivity struct {
	Period  string `json:"period"`
	TxCount int    `json:"tx_count"`
	Event   string `json:"event,omitempty"`
}

// InactiveGap is a stretch of whole calendar months with no activity
// between two active months.
type InactiveGap struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Months      int    `json:"months"`
	EventMissed string `json:"event_missed,omitempty"`
}

// MonthlyBalance is one point of the reconstructed balance series.
type MonthlyBalance struct {
	Month        string  `json:"month"`
	EstimatedSol float64 `json:"estimated_sol"`
	TxCount      int     `json:"tx_count"`
	SolPriceUSD  float64 `json:"sol_price_usd"`
	EstimatedUSD float64 `json:"estimated_usd"`
}

// ProtocolStat is one protocol's share of tagged transactions.
type ProtocolStat struct {
	Name    string  `json:"name"`
	TxCount int     `json:"tx_count"`
	Pct     float64 `json:"pct"`
}

// TokenLoss is the net SOL lost trading one token.
type TokenLoss struct {
	Token   string  `json:"token"`
	SolLost float64 `json:"sol_lost"`
}

// PeriodLoss is the SOL lost in one calendar month.
type PeriodLoss struct {
	Month   string  `json:"month"`
	SolLost float64 `json:"sol_lost"`
	Event   string  `json:"event,omitempty"`
}

// Result is the full analysis for one wallet. Field names are part of
// the contract with the roast prompt builder and the card renderer.
type Result struct {
	Wallet   string  `json:"wallet"`
	SolBal   float64 `json:"sol_balance"`
	SolUSD   float64 `json:"sol_usd"`
	SolPrice float64 `json:"sol_price"`

	TokenCount      int            `json:"token_count"`
	KnownTokenCount int            `json:"known_token_count"`
	ShitcoinCount   int            `json:"shitcoin_count"`
	DustTokens      int            `json:"dust_tokens"`
	TopTokens       []TokenHolding `json:"top_tokens"`
	HeliusTokens    []HeliusToken  `json:"helius_tokens"`

	TransactionCount   int     `json:"transaction_count"`
	FailedTransactions int     `json:"failed_transactions"`
	FailureRate        float64 `json:"failure_rate"`
	TxsPerDay          float64 `json:"txs_per_day"`
	LateNightTxs       int     `json:"late_night_txs"`
	BurstCount         int     `json:"burst_count"`
	WalletAgeDays      *int    `json:"wallet_age_days"`
	FirstTxDate        *string `json:"first_tx_date"`

	SwapCount     int            `json:"swap_count"`
	ProtocolsUsed []string       `json:"protocols_used"`
	NFTActivity   int            `json:"nft_activity"`
	TxTypes       map[string]int `json:"tx_types"`

	EstimatedPnlSol    float64      `json:"estimated_pnl_sol"`
	TotalSwapsDetected int          `json:"total_swaps_detected"`
	WinRate            float64      `json:"win_rate"`
	TotalSolVolume     float64      `json:"total_sol_volume"`
	BiggestLoss        *BiggestLoss `json:"biggest_loss"`
	BiggestWin         *BiggestWin  `json:"biggest_win"`

	JoinedDuring       *JoinedDuring `json:"joined_during"`
	PeakActivityPeriod *PeakActivity `json:"peak_activity_period"`
	InactiveGaps       []InactiveGap `json:"inactive_gaps"`

	GraveyardTokens int      `json:"graveyard_tokens"`
	GraveyardNames  []string `json:"graveyard_names"`

	IsEmpty bool `json:"is_empty"`

	NetWorthTimeline []MonthlyBalance `json:"net_worth_timeline"`
	ProtocolStats    []ProtocolStat   `json:"protocol_stats"`
	LossByToken      []TokenLoss      `json:"loss_by_token"`
	LossByPeriod     []PeriodLoss     `json:"loss_by_period"`
	ActivityHeatmap  map[string]int   `json:"activity_heatmap"`

	HasHelius bool `json:"has_helius"`
}
