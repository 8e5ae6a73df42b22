package eventmodels

// ListOrdersOptions narrows the open-orders listing. Zero values are omitted
// from the broker request.
type ListOrdersOptions struct {
	Symbol string `schema:"symbol"`
	Count  int    `schema:"count"`
}
