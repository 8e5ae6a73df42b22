package normalizer

import (
	"time"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/utils"
)

// ExtractBaseSymbol returns the underlying ticker of a broker Product. For
// options this is the leading run of letters of the option symbol, or the
// whole symbol when it does not start with a letter.
func ExtractBaseSymbol(product Raw) string {
	symbol := getString(product, "symbol", "")
	if getString(product, "securityType", "") != string(eventmodels.SecurityTypeOption) {
		return symbol
	}

	if root := eventmodels.OptionSymbol(symbol).Root(); root != "" {
		return root
	}

	return symbol
}

// ComputeDaysToExpiry returns the calendar days from today until the
// product's expiry date, or nil when the expiry fields are missing, zero or do
// not form a real date.
func ComputeDaysToExpiry(product Raw, today time.Time) *int {
	year, ok := utils.ToInt64(product["expiryYear"])
	if !ok || year == 0 {
		return nil
	}

	month, ok := utils.ToInt64(product["expiryMonth"])
	if !ok || month == 0 {
		return nil
	}

	day, ok := utils.ToInt64(product["expiryDay"])
	if !ok || day == 0 {
		return nil
	}

	expiry := time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
	if int64(expiry.Year()) != year || int64(expiry.Month()) != month || int64(expiry.Day()) != day {
		return nil
	}

	dte := utils.DaysBetween(today, expiry)
	return &dte
}
