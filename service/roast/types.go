package roast

import (
	"errors"

	"github.com/brojonat/solroast/service/analyzer"
)

// ErrBadReply indicates the model returned something that is not the
// expected JSON shape. Callers may retry or surface a 502.
var ErrBadReply = errors.New("malformed roast reply")

// WalletStats is the subset of the analysis echoed back alongside the
// roast so the card renderer never needs a second analysis call.
type WalletStats struct {
	SolBalance         float64                   `json:"sol_balance"`
	SolUSD             float64                   `json:"sol_usd"`
	TokenCount         int                       `json:"token_count"`
	TransactionCount   int                       `json:"transaction_count"`
	FailedTransactions int                       `json:"failed_transactions"`
	WalletAgeDays      *int                      `json:"wallet_age_days"`
	SwapCount          int                       `json:"swap_count"`
	MemecoinCount      int                       `json:"memecoin_count"`
	ShitcoinCount      int                       `json:"shitcoin_count"`
	FailureRate        float64                   `json:"failure_rate"`
	EstimatedPnlSol    float64                   `json:"estimated_pnl_sol"`
	TotalSwapsDetected int                       `json:"total_swaps_detected"`
	WinRate            float64                   `json:"win_rate"`
	GraveyardTokens    int                       `json:"graveyard_tokens"`
	TotalSolVolume     float64                   `json:"total_sol_volume"`
	BiggestLoss        *analyzer.BiggestLoss     `json:"biggest_loss"`
	PeakActivityPeriod *analyzer.PeakActivity    `json:"peak_activity_period"`
	NetWorthTimeline   []analyzer.MonthlyBalance `json:"net_worth_timeline"`
	ProtocolStats      []analyzer.ProtocolStat   `json:"protocol_stats"`
	LossByToken        []analyzer.TokenLoss      `json:"loss_by_token"`
	LossByPeriod       []analyzer.PeriodLoss     `json:"loss_by_period"`
	ActivityHeatmap    map[string]int            `json:"activity_heatmap"`
}

// walletStatsFrom builds the echo block from a full analysis. The
// memecoin count mirrors the known-token count.
func walletStatsFrom(a *analyzer.Result) WalletStats {
	return WalletStats{
		SolBalance:         a.SolBal,
		SolUSD:             a.SolUSD,
		TokenCount:         a.TokenCount,
		TransactionCount:   a.TransactionCount,
		FailedTransactions: a.FailedTransactions,
		WalletAgeDays:      a.WalletAgeDays,
		SwapCount:          a.SwapCount,
		MemecoinCount:      a.KnownTokenCount,
		ShitcoinCount:      a.ShitcoinCount,
		FailureRate:        a.FailureRate,
		EstimatedPnlSol:    a.EstimatedPnlSol,
		TotalSwapsDetected: a.TotalSwapsDetected,
		WinRate:            a.WinRate,
		GraveyardTokens:    a.GraveyardTokens,
		TotalSolVolume:     a.TotalSolVolume,
		BiggestLoss:        a.BiggestLoss,
		PeakActivityPeriod: a.PeakActivityPeriod,
		NetWorthTimeline:   a.NetWorthTimeline,
		ProtocolStats:      a.ProtocolStats,
		LossByToken:        a.LossByToken,
		LossByPeriod:       a.LossByPeriod,
		ActivityHeatmap:    a.ActivityHeatmap,
	}
}

// Roast is a generated roast plus the persona identity and the stats
// echo block.
type Roast struct {
	Title            string      `json:"title"`
	RoastLines       []string    `json:"roast_lines"`
	DegenScore       int         `json:"degen_score"`
	ScoreExplanation string      `json:"score_explanation"`
	Summary          string      `json:"summary"`
	Persona          string      `json:"persona"`
	PersonaName      string      `json:"persona_name"`
	PersonaIcon      string      `json:"persona_icon"`
	WalletStats      WalletStats `json:"wallet_stats"`
}
