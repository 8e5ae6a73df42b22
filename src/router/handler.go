package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/gateway"
)

const SessionHeader = "X-Session-Id"

var errSessionHeaderRequired = errors.New("X-Session-Id header required")

var errBodyRequired = errors.New("Request body required")

const indexPage = `<html>
<head><title>itrade</title></head>
<body>
    <h1>itrade</h1>
    <p>API available at <a href="/api/health">/api/health</a></p>
</body>
</html>
`

type Handler struct {
	service *gateway.Service
	decoder *schema.Decoder
}

// NewRouter wires every route onto a fresh mux router. The returned handler
// is instrumented with otelhttp.
func NewRouter(service *gateway.Service) http.Handler {
	h := &Handler{
		service: service,
		decoder: schema.NewDecoder(),
	}
	h.decoder.IgnoreUnknownKeys(true)

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)

	// handleFunc is a replacement for mux.HandleFunc
	// which enriches the handler's HTTP instrumentation with the pattern as the http.route.
	handleFunc := func(pattern string, handlerFunc func(http.ResponseWriter, *http.Request), methods ...string) {
		handler := otelhttp.WithRouteTag(pattern, http.HandlerFunc(handlerFunc))
		router.Handle(pattern, handler).Methods(methods...)
	}

	handleFunc("/", h.handleIndex, http.MethodGet)
	handleFunc("/api/health", h.handleHealth, http.MethodGet)
	handleFunc("/api/echo", h.handleEcho, http.MethodPost)

	handleFunc("/api/etrade/auth/status", h.handleAuthStatus, http.MethodGet)
	handleFunc("/api/etrade/auth/logout", h.handleLogout, http.MethodPost)
	handleFunc("/api/etrade/auth/request-token", h.handleRequestToken, http.MethodPost)
	handleFunc("/api/etrade/auth/access-token", h.handleAccessToken, http.MethodPost)

	handleFunc("/api/etrade/accounts", h.handleAccounts, http.MethodGet)
	handleFunc("/api/etrade/accounts/{key}/positions", h.handlePositions, http.MethodGet)
	handleFunc("/api/etrade/accounts/{key}/orders", h.handleOpenOrders, http.MethodGet)
	handleFunc("/api/etrade/accounts/{key}/orders", h.handlePlaceOrder, http.MethodPost)
	handleFunc("/api/etrade/accounts/{key}/orders/{id:[0-9]+}", h.handleCancelOrder, http.MethodDelete)
	handleFunc("/api/etrade/accounts/{key}/balance", h.handleBalance, http.MethodGet)

	return otelhttp.NewHandler(router, "/")
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, indexPage)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := setResponse(eventmodels.StatusResponse{Status: "ok"}, w); err != nil {
		log.Errorf("handleHealth: failed to set response: %v", err)
	}
}

func (h *Handler) handleEcho(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		setErrorResponse("handleEcho: failed to decode body", 400, err, w)
		return
	}

	if err := setResponse(map[string]interface{}{"echo": data}, w); err != nil {
		log.Errorf("handleEcho: failed to set response: %v", err)
	}
}

func (h *Handler) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	status := h.service.AuthStatus(r.Context())
	if err := setResponse(status, w); err != nil {
		log.Errorf("handleAuthStatus: failed to set response: %v", err)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		setErrorResponse("handleLogout: failed to clear credential", 500, err, w)
		return
	}

	if err := setResponse(eventmodels.StatusResponse{Status: "ok"}, w); err != nil {
		log.Errorf("handleLogout: failed to set response: %v", err)
	}
}

func (h *Handler) handleRequestToken(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.RequestToken(r.Context())
	if err != nil {
		logRequestError(r, "handleRequestToken", err)
		setErrorResponse("handleRequestToken: failed to start oauth", eventmodels.StatusCodeOf(err, 500), err, w)
		return
	}

	if err := setResponse(resp, w); err != nil {
		log.Errorf("handleRequestToken: failed to set response: %v", err)
	}
}

func (h *Handler) handleAccessToken(w http.ResponseWriter, r *http.Request) {
	var req eventmodels.AccessTokenRequest
	if err := decodeBody(r, &req); err != nil {
		setErrorResponse("handleAccessToken: invalid body", 400, err, w)
		return
	}

	if err := req.Validate(); err != nil {
		setErrorResponse("handleAccessToken: invalid request", 400, err, w)
		return
	}

	if err := h.service.AccessToken(r.Context(), req.SessionID, req.VerifierCode); err != nil {
		logRequestError(r, "handleAccessToken", err)
		setErrorResponse("handleAccessToken: failed to exchange verifier", eventmodels.StatusCodeOf(err, 500), err, w)
		return
	}

	if err := setResponse(eventmodels.StatusResponse{Status: "ok"}, w); err != nil {
		log.Errorf("handleAccessToken: failed to set response: %v", err)
	}
}

// sessionID returns the X-Session-Id header, writing a 401 when it is absent.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		setErrorResponse("missing session", 401, errSessionHeaderRequired, w)
		return "", false
	}

	return id, true
}

func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), id)
	if err != nil {
		logRequestError(r, "handleAccounts", err)
		setErrorResponse("handleAccounts: failed to list accounts", eventmodels.StatusCodeOf(err, 500), err, w)
		return
	}

	if err := setResponse(map[string]interface{}{"accounts": accounts}, w); err != nil {
		log.Errorf("handleAccounts: failed to set response: %v", err)
	}
}

func (h *Handler) handlePositions(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	positions, err := h.service.GetPositions(r.Context(), id, mux.Vars(r)["key"])
	if err != nil {
		logRequestError(r, "handlePositions", err)
		setErrorResponse("handlePositions: failed to get positions", eventmodels.StatusCodeOf(err, 500), err, w)
		return
	}

	if err := setResponse(map[string]interface{}{"positions": positions}, w); err != nil {
		log.Errorf("handlePositions: failed to set response: %v", err)
	}
}

func (h *Handler) handleOpenOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var opts eventmodels.ListOrdersOptions
	if err := h.decoder.Decode(&opts, r.URL.Query()); err != nil {
		setErrorResponse("handleOpenOrders: invalid query", 400, err, w)
		return
	}

	openOrders, err := h.service.GetOpenOrders(r.Context(), id, mux.Vars(r)["key"], opts)
	if err != nil {
		logRequestError(r, "handleOpenOrders", err)
		setErrorResponse("handleOpenOrders: failed to get orders", eventmodels.StatusCodeOf(err, 500), err, w)
		return
	}

	if err := setResponse(map[string]interface{}{"orders": openOrders}, w); err != nil {
		log.Errorf("handleOpenOrders: failed to set response: %v", err)
	}
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(r.Context(), id, mux.Vars(r)["key"])
	if err != nil {
		logRequestError(r, "handleBalance", err)
		setErrorResponse("handleBalance: failed to get balance", eventmodels.StatusCodeOf(err, 500), err, w)
		return
	}

	if err := setResponse(map[string]interface{}{"balance": balance}, w); err != nil {
		log.Errorf("handleBalance: failed to set response: %v", err)
	}
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req eventmodels.PlaceOrderRequest
	if err := decodeBody(r, &req); err != nil {
		setErrorResponse("handlePlaceOrder: invalid body", 400, err, w)
		return
	}

	resp, err := h.service.PlaceOrder(r.Context(), id, mux.Vars(r)["key"], req)
	if err != nil {
		logRequestError(r, "handlePlaceOrder", err)
		setErrorResponse("handlePlaceOrder: failed to place order", 400, err, w)
		return
	}

	if err := setResponse(resp, w); err != nil {
		log.Errorf("handlePlaceOrder: failed to set response: %v", err)
	}
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	orderID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		setErrorResponse("handleCancelOrder: invalid order id", 400, err, w)
		return
	}

	resp, err := h.service.CancelOrder(r.Context(), id, vars["key"], orderID)
	if err != nil {
		logRequestError(r, "handleCancelOrder", err)
		setErrorResponse("handleCancelOrder: failed to cancel order", 400, err, w)
		return
	}

	if err := setResponse(resp, w); err != nil {
		log.Errorf("handleCancelOrder: failed to set response: %v", err)
	}
}

// decodeBody decodes a JSON object body into v. An empty body, or a body
// that is JSON null, is rejected.
func decodeBody(r *http.Request, v interface{}) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return fmt.Errorf("failed to decode body: %w", err)
	}

	if string(raw) == "null" {
		return errBodyRequired
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}

	return nil
}
