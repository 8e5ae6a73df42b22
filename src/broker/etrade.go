package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dghubble/oauth1"
	log "github.com/sirupsen/logrus"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/normalizer"
)

const (
	ProductionBaseURL = "https://api.etrade.com"
	SandboxBaseURL    = "https://apisb.etrade.com"
	AuthorizeURL      = "https://us.etrade.com/e/t/etws/authorize"
)

// AuthorizeLink builds the page the user visits to approve a request token.
func AuthorizeLink(authorizeURL, consumerKey, requestToken string) string {
	q := url.Values{}
	q.Set("key", consumerKey)
	q.Set("token", requestToken)
	return fmt.Sprintf("%s?%s", authorizeURL, q.Encode())
}

type ETradeClient struct {
	baseURL      string
	authorizeURL string
	httpClient   *http.Client
}

// NewETradeClient returns a client against baseURL. A nil httpClient means
// http.DefaultClient, which has no timeout.
func NewETradeClient(baseURL string, httpClient *http.Client) *ETradeClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &ETradeClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		authorizeURL: AuthorizeURL,
		httpClient:   httpClient,
	}
}

func (c *ETradeClient) WithAuthorizeURL(authorizeURL string) *ETradeClient {
	c.authorizeURL = authorizeURL
	return c
}

func (c *ETradeClient) oauthConfig(consumerKey, consumerSecret string) *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		CallbackURL:    "oob",
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: c.baseURL + "/oauth/request_token",
			AuthorizeURL:    c.authorizeURL,
			AccessTokenURL:  c.baseURL + "/oauth/access_token",
		},
		HTTPClient: c.httpClient,
	}
}

func (c *ETradeClient) StartOAuth(ctx context.Context, consumerKey, consumerSecret string) (*eventmodels.OAuthHandle, string, error) {
	requestToken, requestSecret, err := c.oauthConfig(consumerKey, consumerSecret).RequestToken()
	if err != nil {
		return nil, "", fmt.Errorf("StartOAuth: failed to get request token: %w", err)
	}

	handle := &eventmodels.OAuthHandle{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		RequestToken:   requestToken,
		RequestSecret:  requestSecret,
	}

	return handle, AuthorizeLink(c.authorizeURL, consumerKey, requestToken), nil
}

func (c *ETradeClient) ExchangeVerifier(ctx context.Context, handle eventmodels.OAuthHandle, verifier string) (string, string, error) {
	config := c.oauthConfig(handle.ConsumerKey, handle.ConsumerSecret)
	accessToken, accessSecret, err := config.AccessToken(handle.RequestToken, handle.RequestSecret, verifier)
	if err != nil {
		return "", "", fmt.Errorf("ExchangeVerifier: failed to get access token: %w", err)
	}

	return accessToken, accessSecret, nil
}

func (c *ETradeClient) ListAccounts(ctx context.Context, cred eventmodels.Credential) (map[string]interface{}, error) {
	return c.do(ctx, cred, http.MethodGet, "/v1/accounts/list.json", nil, nil)
}

func (c *ETradeClient) GetPortfolio(ctx context.Context, cred eventmodels.Credential, accountKey string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("view", "COMPLETE")
	query.Set("totalsRequired", "true")

	return c.do(ctx, cred, http.MethodGet, accountPath(accountKey, "portfolio.json"), query, nil)
}

func (c *ETradeClient) ListOpenOrders(ctx context.Context, cred eventmodels.Credential, accountKey string, opts eventmodels.ListOrdersOptions) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("status", "OPEN")
	if opts.Symbol != "" {
		query.Set("symbol", opts.Symbol)
	}
	if opts.Count > 0 {
		query.Set("count", strconv.Itoa(opts.Count))
	}

	return c.do(ctx, cred, http.MethodGet, accountPath(accountKey, "orders.json"), query, nil)
}

func (c *ETradeClient) GetBalance(ctx context.Context, cred eventmodels.Credential, accountKey string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("instType", "BROKERAGE")
	query.Set("realTimeNAV", "true")

	return c.do(ctx, cred, http.MethodGet, accountPath(accountKey, "balance.json"), query, nil)
}

func (c *ETradeClient) PreviewOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PreviewOrderPayload) (map[string]interface{}, error) {
	return c.do(ctx, cred, http.MethodPost, accountPath(accountKey, "orders/preview.json"), nil, payload)
}

// PlaceOrder places payload. The broker only accepts orders that carry a
// previewId, so a payload without one is previewed first under the same
// client order id.
func (c *ETradeClient) PlaceOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PlaceOrderPayload) (map[string]interface{}, error) {
	if !payload.PlaceOrderRequest.HasPreviewID() {
		preview, err := c.PreviewOrder(ctx, cred, accountKey, eventmodels.PreviewOrderPayload{PreviewOrderRequest: payload.PlaceOrderRequest})
		if err != nil {
			return nil, fmt.Errorf("PlaceOrder: %w", err)
		}

		previewID, found := normalizer.ExtractPreviewID(preview)
		if !found {
			return nil, fmt.Errorf("PlaceOrder: %w", eventmodels.ErrPreviewFailed)
		}

		log.WithContext(ctx).Debugf("PlaceOrder: previewed %s as %d", payload.PlaceOrderRequest.ClientOrderID, previewID)
		payload.PlaceOrderRequest.PreviewIDs = []eventmodels.BrokerPreviewID{{PreviewID: previewID}}
	}

	return c.do(ctx, cred, http.MethodPost, accountPath(accountKey, "orders/place.json"), nil, payload)
}

type cancelOrderRequest struct {
	OrderID int64 `json:"orderId"`
}

type cancelOrderPayload struct {
	CancelOrderRequest cancelOrderRequest `json:"CancelOrderRequest"`
}

func (c *ETradeClient) CancelOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, orderID int64) (map[string]interface{}, error) {
	payload := cancelOrderPayload{CancelOrderRequest: cancelOrderRequest{OrderID: orderID}}
	return c.do(ctx, cred, http.MethodPut, accountPath(accountKey, "orders/cancel.json"), nil, payload)
}

func accountPath(accountKey, resource string) string {
	return fmt.Sprintf("/v1/accounts/%s/%s", url.PathEscape(accountKey), resource)
}

func (c *ETradeClient) signedClient(ctx context.Context, cred eventmodels.Credential) *http.Client {
	config := c.oauthConfig(cred.ConsumerKey, cred.ConsumerSecret)
	ctx = context.WithValue(ctx, oauth1.HTTPClient, c.httpClient)
	return config.Client(ctx, oauth1.NewToken(cred.AccessToken, cred.AccessTokenSecret))
}

func (c *ETradeClient) do(ctx context.Context, cred eventmodels.Credential, method, path string, query url.Values, body interface{}) (map[string]interface{}, error) {
	fullUrl := c.baseURL + path
	if len(query) > 0 {
		fullUrl = fmt.Sprintf("%s?%s", fullUrl, query.Encode())
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ETradeClient: failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullUrl, reader)
	if err != nil {
		return nil, fmt.Errorf("ETradeClient: failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	log.WithContext(ctx).Tracef("%s %s", method, fullUrl)

	res, err := c.signedClient(ctx, cred).Do(req)
	if err != nil {
		return nil, &eventmodels.UpstreamHttpError{
			Method: method,
			URL:    c.baseURL + path,
			Cause:  err,
		}
	}

	defer res.Body.Close()

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("ETradeClient: failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &eventmodels.UpstreamHttpError{
			Method:     method,
			URL:        c.baseURL + path,
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Body:       strings.TrimSpace(string(respBytes)),
		}
	}

	if len(bytes.TrimSpace(respBytes)) == 0 {
		return nil, eventmodels.ErrEmptyResponse
	}

	decoder := json.NewDecoder(bytes.NewReader(respBytes))
	decoder.UseNumber()

	var result map[string]interface{}
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("ETradeClient: failed to decode response from %s: %w", path, err)
	}

	return result, nil
}
