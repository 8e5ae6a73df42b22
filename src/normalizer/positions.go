package normalizer

import (
	"time"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
)

// NormalizePositions flattens PortfolioResponse.AccountPortfolio[].Position[]
// into one list across all portfolios, in broker order.
func NormalizePositions(raw Raw, today time.Time) []eventmodels.Position {
	positions := []eventmodels.Position{}
	if len(raw) == 0 {
		return positions
	}

	portfolios := ensureObjects(getMap(raw, "PortfolioResponse")["AccountPortfolio"])
	for _, portfolio := range portfolios {
		for _, pos := range ensureObjects(portfolio["Position"]) {
			positions = append(positions, normalizePosition(pos, today))
		}
	}

	return positions
}

func normalizePosition(pos Raw, today time.Time) eventmodels.Position {
	product := getMap(pos, "Product")
	quick := getMap(pos, "Quick")
	complete := getMap(pos, "Complete")

	securityType := getString(product, "securityType", "")

	quantity := getFloat(pos, "quantity", 0)
	pricePaid := getFloat(pos, "pricePaid", 0)
	marketValue := getFloat(pos, "marketValue", 0)
	totalCost := getFloat(pos, "totalCost", quantity*pricePaid)
	totalGain := getFloat(pos, "totalGain", marketValue-totalCost)

	description := securityType
	if has(pos, "symbolDescription") {
		description = getString(pos, "symbolDescription", securityType)
	}

	return eventmodels.Position{
		Symbol:         getString(product, "symbol", ""),
		BaseSymbol:     ExtractBaseSymbol(product),
		Description:    description,
		Type:           securityType,
		StrikePrice:    getFloatPtr(product, "strikePrice"),
		CallPut:        getStringPtr(product, "callPut"),
		Quantity:       quantity,
		PricePaid:      pricePaid,
		MarketValue:    marketValue,
		TotalCost:      totalCost,
		DayGain:        getFloat(quick, "change", 0),
		DayGainPct:     getFloat(quick, "changePct", 0),
		TotalGain:      totalGain,
		TotalGainPct:   getFloat(pos, "totalGainPct", 0),
		LastPrice:      getFloat(quick, "lastTrade", 0),
		DaysGain:       getFloat(pos, "daysGain", 0),
		PctOfPortfolio: getFloat(pos, "pctOfPortfolio", 0),
		CostPerShare:   getFloat(complete, "costPerShare", pricePaid),
		DTE:            ComputeDaysToExpiry(product, today),
		Delta:          getFloatPtr(complete, "delta"),
		Gamma:          getFloatPtr(complete, "gamma"),
		Theta:          getFloatPtr(complete, "theta"),
		Vega:           getFloatPtr(complete, "vega"),
		Rho:            getFloatPtr(complete, "rho"),
		IV:             getFloatPtr(complete, "ivPct"),
		IntrinsicValue: getFloatPtr(complete, "intrinsicValue"),
		Premium:        getFloatPtr(complete, "premium"),
		OpenInterest:   getFloatPtr(complete, "openInterest"),
		DateAcquired:   getInt64Ptr(pos, "dateAcquired"),
		ExpiryYear:     getIntPtr(product, "expiryYear"),
		ExpiryMonth:    getIntPtr(product, "expiryMonth"),
		ExpiryDay:      getIntPtr(product, "expiryDay"),
	}
}
