package handler

import (
	"errors"
	"fmt"

	"resto_manager/config"
	"resto_manager/gateway"
	"resto_manager/model"
	"resto_manager/service"
	"resto_manager/utils"

	"github.com/gofiber/fiber/v2"
)

// loadPayableOrder fetches an order and rejects anything not awaiting payment.
func loadPayableOrder(c *fiber.Ctx, orderId uint) (*model.Pedido, error) {
	pedido, apiErr := Orders.GetOrder(restaurantId(c), orderId)
	if apiErr != nil {
		return nil, apiError(c, apiErr)
	}
	if pedido.Status != model.OrderPendingPayment {
		return nil, utils.ErrorResponse(c, fiber.StatusConflict, "Order is not awaiting payment",
			errors.New("order status is "+pedido.Status))
	}
	return pedido, nil
}

// providerToken resolves the tenant's credential. Absent credentials are a
// deployment fault, not a client mistake, so they surface as 500.
func providerToken(c *fiber.Ctx, provider string) (string, error) {
	token, err := gateway.ResolveToken(Creds, restaurantId(c), provider)
	if err != nil {
		return "", apiError(c, service.Internal("no payment credentials configured", err))
	}
	return token, nil
}

func upstreamError(c *fiber.Ctx, err error) error {
	var upstream *gateway.UpstreamError
	if errors.As(err, &upstream) {
		return apiError(c, service.Upstream(upstream.Status, upstream.Body))
	}
	return utils.ErrorResponse(c, fiber.StatusBadGateway, "Provider unreachable", err)
}

// CreatePreference starts a MercadoPago redirect checkout for an order.
func CreatePreference(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreatePreferenceInput)
	restId := restaurantId(c)

	pedido, ferr := loadPayableOrder(c, input.OrderId)
	if pedido == nil {
		return ferr
	}
	token, terr := providerToken(c, model.ProviderMercadoPago)
	if token == "" {
		return terr
	}

	view := service.BuildOrderView(pedido)
	req := gateway.MPPreferenceRequest{
		ExternalReference: fmt.Sprintf("pedido-%d", pedido.ID),
		NotificationURL: fmt.Sprintf("%s/webhooks/payment?provider=%s&restaurantId=%d",
			config.Config("PUBLIC_BASE_URL"), model.ProviderMercadoPago, restId),
		Metadata: map[string]string{
			"restaurant_id": fmt.Sprintf("%d", restId),
			"order_id":      fmt.Sprintf("%d", pedido.ID),
		},
	}
	for _, item := range view.Items {
		req.Items = append(req.Items, gateway.MPPreferenceItem{
			Title:     item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	pref, err := MP.CreatePreference(token, req)
	if err != nil {
		return upstreamError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"preferenceId":     pref.Id,
		"initPoint":        pref.InitPoint,
		"sandboxInitPoint": pref.SandboxInitPoint,
		"orderId":          pedido.ID,
		"amount":           pedido.Total,
	})
}

// CreateCharge performs a direct server-side charge with a client-collected
// token, then runs the result through the same settlement path as a webhook.
func CreateCharge(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateChargeInput)
	restId := restaurantId(c)

	pedido, ferr := loadPayableOrder(c, input.OrderId)
	if pedido == nil {
		return ferr
	}
	token, terr := providerToken(c, input.Provider)
	if token == "" {
		return terr
	}

	idemKey := fmt.Sprintf("charge-%d-%d", restId, pedido.ID)
	externalRef := fmt.Sprintf("pedido-%d", pedido.ID)
	metadata := map[string]string{
		"restaurant_id": fmt.Sprintf("%d", restId),
		"order_id":      fmt.Sprintf("%d", pedido.ID),
	}

	var result *gateway.ChargeResult
	var err error
	switch input.Provider {
	case model.ProviderCulqi:
		result, err = CQ.CreateCharge(token, gateway.CulqiChargeRequest{
			Amount:       utils.ToMinorUnits(pedido.Total),
			CurrencyCode: "PEN",
			Email:        input.Email,
			SourceId:     input.Token,
			Description:  "Pedido " + externalRef,
			Metadata:     metadata,
		}, idemKey)
	case model.ProviderMercadoPago:
		installments := input.Installments
		if installments == 0 {
			installments = 1
		}
		result, err = MP.CreatePayment(token, gateway.MPPaymentRequest{
			TransactionAmount: pedido.Total,
			Token:             input.Token,
			Description:       "Pedido " + externalRef,
			Installments:      installments,
			PaymentMethodId:   input.PaymentMethodId,
			Payer:             gateway.MPPayer{Email: input.Email},
			ExternalReference: externalRef,
			Metadata:          metadata,
		}, idemKey, c.Get("X-Device-Session-Id"))
	}
	if err != nil {
		return upstreamError(c, err)
	}

	if result.ProviderPaymentId != "" {
		Webhooks.Settle(restId, input.Provider, &gateway.PaymentInfo{
			Id:                result.ProviderPaymentId,
			Status:            result.Status,
			Amount:            pedido.Total,
			Currency:          "PEN",
			Method:            input.Provider,
			ExternalReference: externalRef,
			Metadata:          metadata,
			Raw:               result.Raw,
		})
	}

	current, apiErr := Orders.GetOrder(restId, pedido.ID)
	if apiErr != nil {
		return apiError(c, apiErr)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"providerPaymentId": result.ProviderPaymentId,
		"paymentStatus":     result.Status,
		"orderId":           current.ID,
		"orderStatus":       current.Status,
	})
}
