package eventmodels

type SecurityType string

const (
	SecurityTypeEquity SecurityType = "EQ"
	SecurityTypeOption SecurityType = "OPTN"
)

type PriceType string

const (
	PriceTypeLimit     PriceType = "LIMIT"
	PriceTypeNetDebit  PriceType = "NET_DEBIT"
	PriceTypeNetCredit PriceType = "NET_CREDIT"
)

const (
	OrderTermGoodUntilCancel = "GOOD_UNTIL_CANCEL"
	MarketSessionRegular     = "REGULAR"
	QuantityTypeQuantity     = "QUANTITY"
	OrderTypeSpreads         = "SPREADS"
)
