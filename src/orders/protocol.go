package orders

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/normalizer"
)

// OrderClient is the subset of the broker client the order protocol needs.
type OrderClient interface {
	PreviewOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PreviewOrderPayload) (map[string]interface{}, error)
	PlaceOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, payload eventmodels.PlaceOrderPayload) (map[string]interface{}, error)
	CancelOrder(ctx context.Context, cred eventmodels.Credential, accountKey string, orderID int64) (map[string]interface{}, error)
}

func PlaceSingleLegOrder(ctx context.Context, client OrderClient, cred eventmodels.Credential, accountKey string, order *SingleLegOrder) (map[string]interface{}, error) {
	resp, err := client.PlaceOrder(ctx, cred, accountKey, eventmodels.PlaceOrderPayload{PlaceOrderRequest: order.Request})
	if err != nil {
		return nil, fmt.Errorf("PlaceSingleLegOrder: %w", err)
	}

	return resp, nil
}

// PlaceSpreadOrder previews the spread, then places it with the returned
// previewId. Both phases carry the same client order id. Nothing is placed
// if the preview fails or yields no previewId.
func PlaceSpreadOrder(ctx context.Context, client OrderClient, cred eventmodels.Credential, accountKey string, order *SpreadOrder) (map[string]interface{}, error) {
	request := order.Request
	request.PreviewIDs = nil

	preview, err := client.PreviewOrder(ctx, cred, accountKey, eventmodels.PreviewOrderPayload{PreviewOrderRequest: request})
	if err != nil {
		return nil, fmt.Errorf("PlaceSpreadOrder: preview failed: %w", err)
	}

	previewID, found := normalizer.ExtractPreviewID(preview)
	if !found {
		return nil, fmt.Errorf("PlaceSpreadOrder: %w", eventmodels.ErrPreviewFailed)
	}

	log.WithContext(ctx).WithFields(log.Fields{
		"clientOrderId": request.ClientOrderID,
		"previewId":     previewID,
	}).Info("spread order previewed")

	request.PreviewIDs = []eventmodels.BrokerPreviewID{{PreviewID: previewID}}

	resp, err := client.PlaceOrder(ctx, cred, accountKey, eventmodels.PlaceOrderPayload{PlaceOrderRequest: request})
	if err != nil {
		return nil, fmt.Errorf("PlaceSpreadOrder: place failed: %w", err)
	}

	return resp, nil
}

// CancelOrder cancels orderID. The broker answers a successful cancel with an
// empty body, which is reported as cancelled.
func CancelOrder(ctx context.Context, client OrderClient, cred eventmodels.Credential, accountKey string, orderID int64) (map[string]interface{}, error) {
	resp, err := client.CancelOrder(ctx, cred, accountKey, orderID)
	if err != nil && !errors.Is(err, eventmodels.ErrEmptyResponse) {
		return nil, fmt.Errorf("CancelOrder: %w", err)
	}

	if len(resp) == 0 {
		return map[string]interface{}{
			"status":  "cancelled",
			"orderId": orderID,
		}, nil
	}

	return resp, nil
}
