package eventmodels

// Order is a working (limit-priced) order with its legs. Orders without a
// limit price and legs without a symbol never make it into this shape.
type Order struct {
	OrderID       int64      `json:"orderId"`
	OrderType     string     `json:"orderType"`
	LimitPrice    float64    `json:"limitPrice"`
	StopPrice     *float64   `json:"stopPrice"`
	PriceType     string     `json:"priceType"`
	OrderTerm     string     `json:"orderTerm"`
	MarketSession string     `json:"marketSession"`
	PlacedTime    *int64     `json:"placedTime"`
	NetPrice      *float64   `json:"netPrice"`
	NetBid        *float64   `json:"netBid"`
	NetAsk        *float64   `json:"netAsk"`
	Status        string     `json:"status"`
	AllOrNone     bool       `json:"allOrNone"`
	BaseSymbol    string     `json:"baseSymbol"`
	Legs          []OrderLeg `json:"legs"`
}

type OrderLeg struct {
	Symbol              string   `json:"symbol"`
	BaseSymbol          string   `json:"baseSymbol"`
	SymbolDescription   string   `json:"symbolDescription"`
	OrderedQuantity     float64  `json:"orderedQuantity"`
	FilledQuantity      float64  `json:"filledQuantity"`
	OrderAction         string   `json:"orderAction"`
	StrikePrice         *float64 `json:"strikePrice"`
	CallPut             *string  `json:"callPut"`
	ExpiryYear          *int     `json:"expiryYear"`
	ExpiryMonth         *int     `json:"expiryMonth"`
	ExpiryDay           *int     `json:"expiryDay"`
	Bid                 *float64 `json:"bid"`
	Ask                 *float64 `json:"ask"`
	LastPrice           *float64 `json:"lastprice"`
	EstimatedCommission *float64 `json:"estimatedCommission"`
}
