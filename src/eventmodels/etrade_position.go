package eventmodels

// Position is a portfolio position flattened from the broker's nested
// Product/Quick/Complete shape. Pointer fields are nil when the broker does
// not report them, which is the case for the option-only fields on equities.
type Position struct {
	Symbol         string   `json:"symbol"`
	BaseSymbol     string   `json:"baseSymbol"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	StrikePrice    *float64 `json:"strikePrice"`
	CallPut        *string  `json:"callPut"`
	Quantity       float64  `json:"quantity"`
	PricePaid      float64  `json:"pricePaid"`
	MarketValue    float64  `json:"marketValue"`
	TotalCost      float64  `json:"totalCost"`
	DayGain        float64  `json:"dayGain"`
	DayGainPct     float64  `json:"dayGainPct"`
	TotalGain      float64  `json:"totalGain"`
	TotalGainPct   float64  `json:"totalGainPct"`
	LastPrice      float64  `json:"lastPrice"`
	DaysGain       float64  `json:"daysGain"`
	PctOfPortfolio float64  `json:"pctOfPortfolio"`
	CostPerShare   float64  `json:"costPerShare"`
	DTE            *int     `json:"dte"`
	Delta          *float64 `json:"delta"`
	Gamma          *float64 `json:"gamma"`
	Theta          *float64 `json:"theta"`
	Vega           *float64 `json:"vega"`
	Rho            *float64 `json:"rho"`
	IV             *float64 `json:"iv"`
	IntrinsicValue *float64 `json:"intrinsicValue"`
	Premium        *float64 `json:"premium"`
	OpenInterest   *float64 `json:"openInterest"`
	DateAcquired   *int64   `json:"dateAcquired"`
	ExpiryYear     *int     `json:"expiryYear"`
	ExpiryMonth    *int     `json:"expiryMonth"`
	ExpiryDay      *int     `json:"expiryDay"`
}

func (p Position) IsOption() bool {
	return p.Type == string(SecurityTypeOption)
}
