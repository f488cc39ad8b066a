package refdata

// MarketEvent is a notable market period with a sentiment tag used to
// pick a canned behavioral label for wallets that joined during it.
type MarketEvent struct {
	Event     string `json:"event"`
	Sentiment string `json:"sentiment"`
}

// marketEvents maps calendar month (YYYY-MM) to the event that defined
// it. Sparse on purpose; quiet months have no entry.
var marketEvents = map[string]MarketEvent{
	"2021-01": {Event: "SOL breaks out of single digits", Sentiment: "early"},
	"2021-05": {Event: "First big crypto-wide correction of the cycle", Sentiment: "fear"},
	"2021-08": {Event: "Solana summer, NFT mania begins", Sentiment: "euphoria"},
	"2021-09": {Event: "Grape IDO takes the network down for 17 hours", Sentiment: "chaos"},
	"2021-11": {Event: "SOL all-time high near $260", Sentiment: "top signal"},
	"2022-01": {Event: "Everything starts bleeding", Sentiment: "fear"},
	"2022-05": {Event: "LUNA/UST death spiral", Sentiment: "capitulation"},
	"2022-06": {Event: "Celsius and 3AC implode", Sentiment: "capitulation"},
	"2022-11": {Event: "FTX collapse, SOL nukes to $13", Sentiment: "despair"},
	"2022-12": {Event: "Everyone declares Solana dead", Sentiment: "despair"},
	"2023-01": {Event: "BONK airdrop revives the chain", Sentiment: "recovery"},
	"2023-10": {Event: "SOL reclaims $30, bear market thaw", Sentiment: "recovery"},
	"2023-12": {Event: "JTO airdrop, points meta everywhere", Sentiment: "greed"},
	"2024-01": {Event: "Memecoin season warms up", Sentiment: "greed"},
	"2024-03": {Event: "BONK/WIF memecoin mania peak", Sentiment: "peak degen"},
	"2024-05": {Event: "Pump.fun launches a thousand rugs a day", Sentiment: "peak degen"},
	"2024-11": {Event: "Post-election melt-up, SOL new ATH", Sentiment: "euphoria"},
	"2025-01": {Event: "Political memecoins top the charts", Sentiment: "peak euphoria"},
	"2025-02": {Event: "Memecoin hangover sets in", Sentiment: "fear"},
	"2025-04": {Event: "Tariff panic flushes the market", Sentiment: "capitulation"},
	"2025-09": {Event: "SOL ETF speculation run-up", Sentiment: "greed"},
	"2026-01": {Event: "New-year rotation back into majors", Sentiment: "recovery"},
}

// joinedRoasts maps an event sentiment to the canned label attached to
// wallets whose first activity fell in that event's month.
var joinedRoasts = map[string]string{
	"early":         "Actually early for once",
	"euphoria":      "Aped in at peak euphoria",
	"peak euphoria": "Bought the absolute top",
	"top signal":    "Bought the absolute top",
	"peak degen":    "Joined at maximum degeneracy",
	"greed":         "Chased the pump like everyone else",
	"fear":          "Panic-joined during the dump",
	"chaos":         "Joined while the chain was on fire",
	"capitulation":  "Caught the falling knife",
	"despair":       "Bought when everyone else was crying",
	"recovery":      "Snuck in during the recovery",
}

// EventForMonth returns the market event for a YYYY-MM month, if any.
func EventForMonth(month string) (MarketEvent, bool) {
	ev, ok := marketEvents[month]
	return ev, ok
}

// JoinedRoast returns the canned label for a join-month sentiment, with
// a neutral default for unknown sentiments.
func JoinedRoast(sentiment string) string {
	if roast, ok := joinedRoasts[sentiment]; ok {
		return roast
	}
	return "Joined during a quiet month, somehow still lost money"
}

// EventMonths returns every month that has an event entry. Order is not
// defined.
func EventMonths() []string {
	months := make([]string, 0, len(marketEvents))
	for m := range marketEvents {
		months = append(months, m)
	}
	return months
}
