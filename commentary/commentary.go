// Package commentary generates the one-liner shown after a round. The
// generator is a collaborator, not part of the match core: any failure
// degrades to a fixed fallback string and never blocks round resolution.
package commentary

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/logger"
)

// Fallback is returned whenever a generator cannot produce text in time.
const Fallback = "Bazinga! Calculations inconclusive."

type Generator interface {
	Narrate(a, b game.Move, outcome game.Outcome, edge game.Edge) string
}

// RulesGenerator narrates from the beats table itself, offline.
type RulesGenerator struct{}

func NewRulesGenerator() *RulesGenerator {
	return &RulesGenerator{}
}

func (g *RulesGenerator) Narrate(a, b game.Move, outcome game.Outcome, edge game.Edge) string {
	if outcome == game.Draw {
		return a.String() + " versus " + b.String() + ": a statistical improbability. Draw."
	}
	return edge.String() + "."
}

// HTTPGenerator asks an external commentary service. The request carries a
// hard deadline; on any error or timeout the fallback string is returned.
type HTTPGenerator struct {
	url    string
	client *http.Client
}

func NewHTTPGenerator(url string) *HTTPGenerator {
	return &HTTPGenerator{
		url:    url,
		client: &http.Client{Timeout: 2 * time.Second},
	}
}

type commentaryRequest struct {
	PlayerMove   string `json:"player_move"`
	OpponentMove string `json:"opponent_move"`
	Result       string `json:"result"`
}

type commentaryResponse struct {
	Text string `json:"text"`
}

func (g *HTTPGenerator) Narrate(a, b game.Move, outcome game.Outcome, edge game.Edge) string {
	result := "draw"
	switch outcome {
	case game.WinA:
		result = "win"
	case game.WinB:
		result = "lose"
	}

	body, err := json.Marshal(commentaryRequest{
		PlayerMove:   a.String(),
		OpponentMove: b.String(),
		Result:       result,
	})
	if err != nil {
		return Fallback
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Fallback
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Log.Debugf("Commentary service unreachable: %v", err)
		return Fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Fallback
	}

	var out commentaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Text == "" {
		return Fallback
	}
	return out.Text
}
