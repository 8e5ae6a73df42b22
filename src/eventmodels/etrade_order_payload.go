package eventmodels

// BrokerOrderRequest is the body shared by the broker's preview and place
// order calls. The same value, including ClientOrderID, is sent to both.
type BrokerOrderRequest struct {
	OrderType     string              `json:"orderType"`
	ClientOrderID string              `json:"clientOrderId"`
	Order         []BrokerOrderDetail `json:"Order"`
	PreviewIDs    []BrokerPreviewID   `json:"PreviewIds,omitempty"`
}

type BrokerOrderDetail struct {
	AllOrNone     bool               `json:"allOrNone"`
	PriceType     PriceType          `json:"priceType"`
	LimitPrice    float64            `json:"limitPrice"`
	OrderTerm     string             `json:"orderTerm"`
	MarketSession string             `json:"marketSession"`
	Instrument    []BrokerInstrument `json:"Instrument"`
}

type BrokerInstrument struct {
	Product      BrokerProduct `json:"Product"`
	OrderAction  string        `json:"orderAction"`
	QuantityType string        `json:"quantityType"`
	Quantity     int           `json:"quantity"`
}

type BrokerProduct struct {
	SecurityType SecurityType `json:"securityType"`
	Symbol       string       `json:"symbol"`
	CallPut      string       `json:"callPut,omitempty"`
	ExpiryYear   int          `json:"expiryYear,omitempty"`
	ExpiryMonth  int          `json:"expiryMonth,omitempty"`
	ExpiryDay    int          `json:"expiryDay,omitempty"`
	StrikePrice  *float64     `json:"strikePrice,omitempty"`
}

type BrokerPreviewID struct {
	PreviewID int64 `json:"previewId"`
}

type PreviewOrderPayload struct {
	PreviewOrderRequest BrokerOrderRequest `json:"PreviewOrderRequest"`
}

type PlaceOrderPayload struct {
	PlaceOrderRequest BrokerOrderRequest `json:"PlaceOrderRequest"`
}

func (r BrokerOrderRequest) HasPreviewID() bool {
	return len(r.PreviewIDs) > 0
}
