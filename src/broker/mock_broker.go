package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
)

const (
	MethodStartOAuth       = "StartOAuth"
	MethodExchangeVerifier = "ExchangeVerifier"
	MethodListAccounts     = "ListAccounts"
	MethodGetPortfolio     = "GetPortfolio"
	MethodListOpenOrders   = "ListOpenOrders"
	MethodGetBalance       = "GetBalance"
	MethodPreviewOrder     = "PreviewOrder"
	MethodPlaceOrder       = "PlaceOrder"
	MethodCancelOrder      = "CancelOrder"
)

type MockCall struct {
	Method     string
	AccountKey string
	Credential eventmodels.Credential
	Payload    interface{}
}

// MockBrokerClient records every call in order and answers with canned
// responses or errors keyed by method name.
type MockBrokerClient struct {
	calls     []MockCall
	responses map[string]map[string]interface{}
	errors    map[string]error
	mu        sync.Mutex
}

func NewMockBrokerClient() *MockBrokerClient {
	return &MockBrokerClient{
		calls:     make([]MockCall, 0),
		responses: make(map[string]map[string]interface{}),
		errors:    make(map[string]error),
	}
}

func (b *MockBrokerClient) SetResponse(method string, resp map[string]interface{}) *MockBrokerClient {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.responses[method] = resp
	return b
}

func (b *MockBrokerClient) SetError(method string, err error) *MockBrokerClient {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.errors[method] = err
	return b
}

func (b *MockBrokerClient) Calls() []MockCall {
	b.mu.Lock()
	defer b.mu.Unlock()

	calls := make([]MockCall, len(b.calls))
	copy(calls, b.calls)
	return calls
}

func (b *MockBrokerClient) CallsTo(method string) []MockCall {
	var out []MockCall
	for _, call := range b.Calls() {
		if call.Method == method {
			out = append(out, call)
		}
	}

	return out
}

func (b *MockBrokerClient) record(call MockCall) (map[string]interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, call)
	if err, found := b.errors[call.Method]; found {
		return nil, err
	}

	if resp, found := b.responses[call.Method]; found {
		return resp, nil
	}

	return map[string]interface{}{}, nil
}

func (b *MockBrokerClient) StartOAuth(ctx context.Context, consumerKey, consumerSecret string) (*eventmodels.OAuthHandle, string, error) {
	if _, err := b.record(MockCall{Method: MethodStartOAuth}); err != nil {
		return nil, "", err
	}

	handle := &eventmodels.OAuthHandle{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		RequestToken:   "mock-request-token",
		RequestSecret:  "mock-request-secret",
	}

	return handle, AuthorizeLink(AuthorizeURL, consumerKey, handle.RequestToken), nil
}

func (b *MockBrokerClient) ExchangeVerifier(ctx context.Context, handle eventmodels.OAuthHandle, verifier string) (string, string, error) {
	if _, err := b.record(MockCall{Method: MethodExchangeVerifier, Payload: verifier}); err != nil {
		return "", "", err
	}

	return fmt.Sprintf("mock-access-token-%s", verifier), "mock-access-secret", nil
}

func (b *MockBrokerClient) ListAccounts(ctx context.Context, cred eventmodels.Credential) (map[string]interface{}, error) {
	return b.record(MockCall{Method: MethodListAccounts, Credential: cred})
}

func (b *MockBrokerClient) GetPortfolio(ctx context.Context, cred eventmodels.Credential, accountKey string) (map[string]interface{}, error) {
	return b.record(MockCall{Method: MethodGetPortfolio, AccountKey: accountKey, Credential: cred})
}

func (b *MockBrokerClient) ListOpenOrders(ctx context.Context, cred eventmodels.Credential, accountKey string, opts eventmodels.ListOrdersOptions) (map[string]interface{}, error) {
	return b.record(MockCall{Method: MethodListOpenOrders, AccountKey: accountKey, Credential: cred, Payload: opts})
}

func (b *MockBrokerClient) GetBalance(ctx context.Context, cred eventmodels.Credential, accountKey string) (map[string]interface{}, error) {
	return b.record(MockCall{Method: MethodGetBalance, AccountKey: accountKey, Credential: cred})
}

func (b *MockBrokerClient) PreviewOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PreviewOrderPayload) (map[string]interface{}, error) {
	return b.record(MockCall{Method: MethodPreviewOrder, AccountKey: accountKey, Credential: cred, Payload: payload})
}

func (b *MockBrokerClient) PlaceOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PlaceOrderPayload) (map[string]interface{}, error) {
	return b.record(MockCall{Method: MethodPlaceOrder, AccountKey: accountKey, Credential: cred, Payload: payload})
}

func (b *MockBrokerClient) CancelOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, orderID int64) (map[string]interface{}, error) {
	return b.record(MockCall{Method: MethodCancelOrder, AccountKey: accountKey, Credential: cred, Payload: orderID})
}
