package service

import (
	"math"
	"strings"

	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/tidwall/gjson"
)

// ModelPrice is USD per one million tokens.
type ModelPrice struct {
	Input  float64
	Output float64
}

var modelPrices = map[string]ModelPrice{
	"gemini-2.5-flash":            {Input: 0.30, Output: 2.50},
	"gemini-2.5-flash-lite":       {Input: 0.10, Output: 0.40},
	"gemini-2.5-pro":              {Input: 1.25, Output: 10.00},
	"gemini-2.0-flash":            {Input: 0.10, Output: 0.40},
	"google/gemini-2.5-flash":     {Input: 0.30, Output: 2.50},
	"openai/gpt-4o-mini":          {Input: 0.15, Output: 0.60},
	"openai/gpt-4o":               {Input: 2.50, Output: 10.00},
	"openai/gpt-4.1-mini":         {Input: 0.40, Output: 1.60},
	"anthropic/claude-3.5-sonnet": {Input: 3.00, Output: 15.00},
}

func LookupPrice(model string) (ModelPrice, bool) {
	p, ok := modelPrices[strings.ToLower(strings.TrimSpace(model))]
	return p, ok
}

// CalculateCost prices a call in USD, rounded to six decimals.
// Unknown models cost zero and known is false.
func CalculateCost(model string, inputTokens, outputTokens int) (cost float64, known bool) {
	p, ok := LookupPrice(model)
	if !ok {
		return 0, false
	}
	raw := float64(inputTokens)/1e6*p.Input + float64(outputTokens)/1e6*p.Output
	return math.Round(raw*1e6) / 1e6, true
}

var scorePaths = []string{"score", "match_score", "overall_score"}

// ExtractScore reads the first numeric score field from an LLM JSON answer.
func ExtractScore(text string) (float64, bool) {
	clean := util.CleanJSON(text)
	if !gjson.Valid(clean) {
		return 0, false
	}
	for _, path := range scorePaths {
		v := gjson.Get(clean, path)
		if v.Exists() && v.Type == gjson.Number {
			return v.Float(), true
		}
	}
	return 0, false
}
