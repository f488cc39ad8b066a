package nats

import "time"

// RoastEvent is published to "roasts.{wallet}" in JetStream whenever a
// roast is generated. The chat-bot front end consumes these.
type RoastEvent struct {
	Wallet     string    `json:"wallet"`
	Title      string    `json:"title"`
	Persona    string    `json:"persona"`
	DegenScore int       `json:"degen_score"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`

	PublishedAt time.Time `json:"published_at"`
}

// AnalysisEvent is published to "analyses.{wallet}" in JetStream when a
// background refresh produces a new analysis for a wallet.
type AnalysisEvent struct {
	Wallet           string    `json:"wallet"`
	TransactionCount int       `json:"transaction_count"`
	EstimatedPnLSOL  float64   `json:"estimated_pnl_sol"`
	AnalyzedAt       time.Time `json:"analyzed_at"`

	PublishedAt time.Time `json:"published_at"`
}
