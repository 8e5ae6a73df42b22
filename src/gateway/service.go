package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SmooSenseAI/itrade/src/broker"
	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/eventpubsub"
	"github.com/SmooSenseAI/itrade/src/normalizer"
	"github.com/SmooSenseAI/itrade/src/orders"
	"github.com/SmooSenseAI/itrade/src/session"
)

const publisherName = "gateway"

// KeysProvider returns the consumer key and secret for a new OAuth flow.
type KeysProvider func() (string, string)

// CredentialCache is the part of the credential store the gateway clears on
// logout and on authentication failures.
type CredentialCache interface {
	Clear() error
}

type Service struct {
	registry *session.Registry
	cache    CredentialCache
	client   broker.BrokerClient
	apiKeys  KeysProvider
	bus      *eventpubsub.Bus
	now      func() time.Time
	tracer   trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithEventBus(bus *eventpubsub.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

func NewService(registry *session.Registry, cache CredentialCache, client broker.BrokerClient, apiKeys KeysProvider, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		cache:    cache,
		client:   client,
		apiKeys:  apiKeys,
		now:      time.Now,
		tracer:   otel.GetTracerProvider().Tracer("itrade:gateway"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) RequestToken(ctx context.Context) (resp *eventmodels.RequestTokenResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.RequestToken")
	defer func() { endSpan(span, err) }()

	key, secret := s.apiKeys()
	if key == "" || secret == "" {
		return nil, eventmodels.NewWebError(http.StatusBadRequest, "missing api keys", eventmodels.ErrMissingApiKeys)
	}

	handle, authorizeURL, err := s.client.StartOAuth(ctx, key, secret)
	if err != nil {
		return nil, fmt.Errorf("RequestToken: %w", err)
	}

	sessionID, err := s.registry.CreatePending(*handle, key, secret)
	if err != nil {
		return nil, fmt.Errorf("RequestToken: %w", err)
	}

	log.WithContext(ctx).Infof("started oauth flow for session %s", sessionID)

	return &eventmodels.RequestTokenResponse{
		SessionID:    sessionID,
		AuthorizeURL: authorizeURL,
	}, nil
}

// AccessToken exchanges the verifier code the user copied from the broker for
// an access token, authenticating the pending session.
func (s *Service) AccessToken(ctx context.Context, sessionID string, verifier string) (err error) {
	ctx, span := s.tracer.Start(ctx, "Service.AccessToken")
	defer func() { endSpan(span, err) }()

	handle, err := s.registry.PendingHandle(sessionID)
	if err != nil {
		return eventmodels.NewWebError(http.StatusUnauthorized, "unknown session", fmt.Errorf("AccessToken: %w", err))
	}

	token, tokenSecret, err := s.client.ExchangeVerifier(ctx, *handle, strings.TrimSpace(verifier))
	if err != nil {
		return fmt.Errorf("AccessToken: %w", err)
	}

	cred := eventmodels.Credential{
		ConsumerKey:       handle.ConsumerKey,
		ConsumerSecret:    handle.ConsumerSecret,
		AccessToken:       token,
		AccessTokenSecret: tokenSecret,
		CreatedAt:         s.now(),
	}

	if err := s.registry.CompleteAuthentication(sessionID, cred); err != nil {
		return fmt.Errorf("AccessToken: %w", err)
	}

	log.WithContext(ctx).Infof("session %s authenticated", sessionID)
	s.bus.Publish(publisherName, eventpubsub.SessionAuthenticated, eventmodels.SessionAuthenticatedEvent{
		SessionID: sessionID,
		At:        s.now(),
	})

	return nil
}

func (s *Service) AuthStatus(ctx context.Context) *eventmodels.AuthStatusResponse {
	ctx, span := s.tracer.Start(ctx, "Service.AuthStatus")
	defer span.End()

	sessionID, found := s.registry.RestoreFromCache()
	span.SetAttributes(attribute.Bool("authenticated", found))
	if !found {
		return &eventmodels.AuthStatusResponse{Authenticated: false}
	}

	log.WithContext(ctx).Infof("restored session %s from cached credential", sessionID)
	s.bus.Publish(publisherName, eventpubsub.SessionAuthenticated, eventmodels.SessionAuthenticatedEvent{
		SessionID: sessionID,
		Restored:  true,
		At:        s.now(),
	})

	return &eventmodels.AuthStatusResponse{
		Authenticated: true,
		SessionID:     sessionID,
	}
}

func (s *Service) Logout(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "Service.Logout")
	defer func() { endSpan(span, err) }()

	if err := s.cache.Clear(); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}

	log.WithContext(ctx).Info("cleared cached credential")
	s.bus.Publish(publisherName, eventpubsub.SessionInvalidated, eventmodels.SessionInvalidatedEvent{
		Reason: "logout",
		At:     s.now(),
	})

	return nil
}

// readFailure applies the read-path policy: a session error or any upstream
// HTTP error means the cached credential is no longer trusted.
func (s *Service) readFailure(ctx context.Context, op string, sessionID string, err error) error {
	if !eventmodels.IsAuthFailure(err) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if clearErr := s.cache.Clear(); clearErr != nil {
		log.WithContext(ctx).Errorf("%s: failed to clear cached credential: %v", op, clearErr)
	}

	log.WithContext(ctx).Warnf("%s: invalidated cached credential: %v", op, err)
	s.bus.Publish(publisherName, eventpubsub.SessionInvalidated, eventmodels.SessionInvalidatedEvent{
		SessionID: sessionID,
		Reason:    err.Error(),
		At:        s.now(),
	})

	return eventmodels.NewWebError(http.StatusUnauthorized, op, fmt.Errorf("%s: %w: %w", op, eventmodels.ErrAuthenticationFailed, err))
}

func (s *Service) ListAccounts(ctx context.Context, sessionID string) (accounts []interface{}, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListAccounts")
	defer func() { endSpan(span, err) }()

	cred, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, s.readFailure(ctx, "ListAccounts", sessionID, err)
	}

	raw, err := s.client.ListAccounts(ctx, *cred)
	if err != nil && !errors.Is(err, eventmodels.ErrEmptyResponse) {
		return nil, s.readFailure(ctx, "ListAccounts", sessionID, err)
	}

	accounts = normalizer.NormalizeAccounts(raw)
	span.SetAttributes(attribute.Int("accounts", len(accounts)))

	return accounts, nil
}

func (s *Service) GetPositions(ctx context.Context, sessionID string, accountKey string) (positions []eventmodels.Position, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetPositions", trace.WithAttributes(attribute.String("account.key", accountKey)))
	defer func() { endSpan(span, err) }()

	cred, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, s.readFailure(ctx, "GetPositions", sessionID, err)
	}

	raw, err := s.client.GetPortfolio(ctx, *cred, accountKey)
	if err != nil && !errors.Is(err, eventmodels.ErrEmptyResponse) {
		return nil, s.readFailure(ctx, "GetPositions", sessionID, err)
	}

	positions = normalizer.NormalizePositions(raw, s.now())
	span.SetAttributes(attribute.Int("positions", len(positions)))

	return positions, nil
}

func (s *Service) GetOpenOrders(ctx context.Context, sessionID string, accountKey string, opts eventmodels.ListOrdersOptions) (openOrders []eventmodels.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetOpenOrders", trace.WithAttributes(attribute.String("account.key", accountKey)))
	defer func() { endSpan(span, err) }()

	cred, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, s.readFailure(ctx, "GetOpenOrders", sessionID, err)
	}

	raw, err := s.client.ListOpenOrders(ctx, *cred, accountKey, opts)
	if err != nil && !errors.Is(err, eventmodels.ErrEmptyResponse) {
		return nil, s.readFailure(ctx, "GetOpenOrders", sessionID, err)
	}

	openOrders = normalizer.NormalizeOrders(raw)
	span.SetAttributes(attribute.Int("orders", len(openOrders)))

	return openOrders, nil
}

func (s *Service) GetBalance(ctx context.Context, sessionID string, accountKey string) (balance map[string]interface{}, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.GetBalance", trace.WithAttributes(attribute.String("account.key", accountKey)))
	defer func() { endSpan(span, err) }()

	cred, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, s.readFailure(ctx, "GetBalance", sessionID, err)
	}

	raw, err := s.client.GetBalance(ctx, *cred, accountKey)
	if err != nil && !errors.Is(err, eventmodels.ErrEmptyResponse) {
		return nil, s.readFailure(ctx, "GetBalance", sessionID, err)
	}

	return normalizer.NormalizeBalance(raw), nil
}

// PlaceOrder places a spread when req carries legs and a single-leg order
// otherwise. Errors are returned as is; the cached credential is left alone.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, accountKey string, req eventmodels.PlaceOrderRequest) (resp map[string]interface{}, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.PlaceOrder", trace.WithAttributes(
		attribute.String("account.key", accountKey),
		attribute.Bool("spread", req.IsSpread()),
	))
	defer func() { endSpan(span, err) }()

	cred, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("PlaceOrder: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("PlaceOrder: %w", err)
	}

	if req.IsSpread() {
		order, err := orders.BuildSpreadOrder(req.Legs, *req.LimitPrice, req.PriceType)
		if err != nil {
			return nil, fmt.Errorf("PlaceOrder: %w", err)
		}

		span.SetAttributes(attribute.String("client_order_id", order.Request.ClientOrderID))

		resp, err = orders.PlaceSpreadOrder(ctx, s.client, *cred, accountKey, order)
		if err != nil {
			return nil, fmt.Errorf("PlaceOrder: %w", err)
		}
	} else {
		order, err := orders.BuildSingleLegOrder(orders.SingleLegParamsFromRequest(req))
		if err != nil {
			return nil, fmt.Errorf("PlaceOrder: %w", err)
		}

		span.SetAttributes(attribute.String("client_order_id", order.Request.ClientOrderID))

		resp, err = orders.PlaceSingleLegOrder(ctx, s.client, *cred, accountKey, order)
		if err != nil {
			return nil, fmt.Errorf("PlaceOrder: %w", err)
		}
	}

	legs := 1
	if req.IsSpread() {
		legs = len(req.Legs)
	}

	log.WithContext(ctx).WithFields(log.Fields{
		"account": accountKey,
		"spread":  req.IsSpread(),
		"legs":    legs,
	}).Info("order placed")

	s.bus.Publish(publisherName, eventpubsub.OrderPlaced, eventmodels.OrderPlacedEvent{
		AccountKey: accountKey,
		Spread:     req.IsSpread(),
		Legs:       legs,
		At:         s.now(),
	})

	return resp, nil
}

func (s *Service) CancelOrder(ctx context.Context, sessionID string, accountKey string, orderID int64) (resp map[string]interface{}, err error) {
	ctx, span := s.tracer.Start(ctx, "Service.CancelOrder", trace.WithAttributes(
		attribute.String("account.key", accountKey),
		attribute.Int64("order.id", orderID),
	))
	defer func() { endSpan(span, err) }()

	cred, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("CancelOrder: %w", err)
	}

	resp, err = orders.CancelOrder(ctx, s.client, *cred, accountKey, orderID)
	if err != nil {
		return nil, fmt.Errorf("CancelOrder: %w", err)
	}

	log.WithContext(ctx).Infof("cancelled order %d on %s", orderID, accountKey)
	s.bus.Publish(publisherName, eventpubsub.OrderCancelled, eventmodels.OrderCancelledEvent{
		AccountKey: accountKey,
		OrderID:    orderID,
		At:         s.now(),
	})

	return resp, nil
}
