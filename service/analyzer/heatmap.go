package analyzer

import (
	"fmt"
	"strings"
	"time"

	"github.com/brojonat/solroast/service/solana"
)

// buildActivityHeatmap counts transactions into "{dow}_{hour}" buckets
// (UTC), e.g. "sat_14". Entries without a block time are skipped.
func buildActivityHeatmap(sigs []solana.SignatureRecord) map[string]int {
	heatmap := make(map[string]int)
	for _, sig := range sigs {
		if sig.BlockTime == nil {
			continue
		}
		t := time.Unix(*sig.BlockTime, 0).UTC()
		dow := strings.ToLower(t.Weekday().String()[:3])
		heatmap[fmt.Sprintf("%s_%d", dow, t.Hour())]++
	}
	return heatmap
}
