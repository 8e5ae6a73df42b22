package broker

import (
	"context"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
)

// BrokerClient performs signed calls against the brokerage. Every call
// returns the decoded JSON body untouched. Non-2xx responses surface as
// *eventmodels.UpstreamHttpError and an empty body as
// eventmodels.ErrEmptyResponse.
type BrokerClient interface {
	StartOAuth(ctx context.Context, consumerKey, consumerSecret string) (*eventmodels.OAuthHandle, string, error)
	ExchangeVerifier(ctx context.Context, handle eventmodels.OAuthHandle, verifier string) (string, string, error)
	ListAccounts(ctx context.Context, cred eventmodels.Credential) (map[string]interface{}, error)
	GetPortfolio(ctx context.Context, cred eventmodels.Credential, accountKey string) (map[string]interface{}, error)
	ListOpenOrders(ctx context.Context, cred eventmodels.Credential, accountKey string, opts eventmodels.ListOrdersOptions) (map[string]interface{}, error)
	GetBalance(ctx context.Context, cred eventmodels.Credential, accountKey string) (map[string]interface{}, error)
	PreviewOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PreviewOrderPayload) (map[string]interface{}, error)
	PlaceOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PlaceOrderPayload) (map[string]interface{}, error)
	CancelOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, orderID int64) (map[string]interface{}, error)
}

var (
	_ BrokerClient = (*ETradeClient)(nil)
	_ BrokerClient = (*MockBrokerClient)(nil)
)
