package observability

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/reel-director/internal/llm"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	defaultPricingModel = "gpt-5.1"
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for all models
var PricingTable = map[string]ModelPricing{
	"gpt-5":        {InputPricePer1K: 0.00125, OutputPricePer1K: 0.01},
	"gpt-5-mini":   {InputPricePer1K: 0.00025, OutputPricePer1K: 0.002},
	"gpt-5-nano":   {InputPricePer1K: 0.00005, OutputPricePer1K: 0.0004},
	"gpt-5.1":      {InputPricePer1K: 0.00125, OutputPricePer1K: 0.01},
	"gpt-5.1-mini": {InputPricePer1K: 0.00025, OutputPricePer1K: 0.002},
	"gpt-5.2":      {InputPricePer1K: 0.00175, OutputPricePer1K: 0.014},
	"gpt-4o":       {InputPricePer1K: 0.0025, OutputPricePer1K: 0.01},
	"gpt-4o-mini":  {InputPricePer1K: 0.00015, OutputPricePer1K: 0.0006},

	"gemini-2.5-pro":   {InputPricePer1K: 0.00125, OutputPricePer1K: 0.01},
	"gemini-2.5-flash": {InputPricePer1K: 0.0003, OutputPricePer1K: 0.0025},
}

// pricingFor finds the table entry for a model. Dated snapshots
// ("gpt-5.1-2025-11-13") fall back to their base name.
func pricingFor(model string) ModelPricing {
	if pricing, ok := PricingTable[model]; ok {
		return pricing
	}
	best := ""
	for name := range PricingTable {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return PricingTable[best]
	}
	return PricingTable[defaultPricingModel]
}

// CalculateCost calculates the cost in USD of one call.
// Reasoning tokens are billed as output and are already part of the output count.
func CalculateCost(model string, usage llm.TokenUsage) float64 {
	pricing := pricingFor(model)
	inputCost := (float64(usage.Input) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.Output) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + formatFloat(cost, costFormatPrecision)
}

// formatFloat formats a float with specified precision using strconv
func formatFloat(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}
