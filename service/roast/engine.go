// Package roast turns a wallet analysis into a persona-voiced roast
// via an LLM. The model is instructed to answer in a strict JSON shape
// which the engine validates before returning.
package roast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/metrics"
)

// Engine generates roasts from analyses.
type Engine struct {
	llm     LLM
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine creates a roast engine.
func NewEngine(llm LLM, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{llm: llm, logger: logger, metrics: m}
}

// Generate produces a roast of the analysis in the given persona's
// voice. Unknown persona keys fall back to the default persona.
func (e *Engine) Generate(ctx context.Context, analysis *analyzer.Result, persona string) (*Roast, error) {
	key, p := PersonaFor(persona)
	start := time.Now()

	reply, err := e.llm.Complete(ctx, SystemPrompt(key), BuildPrompt(analysis))
	if err != nil {
		e.metrics.RecordRoast(key, "llm_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("roast generation failed: %w", err)
	}

	roast, err := parseReply(reply)
	if err != nil {
		e.metrics.RecordRoast(key, "parse_error", time.Since(start).Seconds())
		e.logger.Warn("unparseable roast reply",
			"wallet", analysis.Wallet,
			"persona", key,
			"error", err,
		)
		return nil, err
	}
	e.metrics.RecordRoast(key, "ok", time.Since(start).Seconds())

	roast.Persona = key
	roast.PersonaName = p.Name
	roast.PersonaIcon = p.Icon
	roast.WalletStats = walletStatsFrom(analysis)

	e.logger.Info("roast generated",
		"wallet", analysis.Wallet,
		"persona", key,
		"degen_score", roast.DegenScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return roast, nil
}

// parseReply extracts the JSON object from the model reply. Models
// sometimes wrap the JSON in a markdown code fence despite
// instructions, so fences are stripped first.
func parseReply(reply string) (*Roast, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	for _, key := range []string{"title", "roast_lines", "degen_score", "score_explanation", "summary"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrBadReply, key)
		}
	}

	var roast Roast
	if err := json.Unmarshal([]byte(text), &roast); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadReply, err)
	}
	if len(roast.RoastLines) == 0 {
		return nil, fmt.Errorf("%w: empty roast_lines", ErrBadReply)
	}
	return &roast, nil
}
