package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PaymentOrder is the authorization handle issued by the backend before the
// user completes payment with the gateway.
type PaymentOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Completion is the gateway's proof of a finished payment, delivered by the
// external checkout UI. It is only trusted after server-side verification.
type Completion struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Authorizer runs the external payment authorization step: given a handle it
// must return the gateway's completion exactly once, or an error if the UI
// was dismissed or timed out.
type Authorizer interface {
	Authorize(ctx context.Context, order PaymentOrder) (*Completion, error)
}

// submitWithAuthorization runs the two-phase gateway path: request an
// authorization handle sized to the cart total, hand off to the external UI,
// verify the completion server-side, and only then create the order. A failed
// verification creates no order and is never retried automatically.
func (f *Flow) submitWithAuthorization(ctx context.Context, in Input) (*Receipt, error) {
	total := f.cart.Total()

	var order PaymentOrder
	err := f.api.Post(ctx, "/razorpay/create-order", map[string]any{
		"amount":  total,
		"receipt": uuid.NewString(),
	}, &order)
	if err != nil {
		return nil, fmt.Errorf("create payment order: %w", backendMessage(err))
	}

	log.Debug().Str("paymentOrder", order.OrderID).Float64("amount", order.Amount).Msg("payment order created")

	completion, err := f.authorizer.Authorize(ctx, order)
	if err != nil {
		return nil, err
	}

	if err := f.api.Post(ctx, "/razorpay/verify-payment", completion, nil); err != nil {
		log.Error().Err(err).Str("paymentOrder", completion.OrderID).Msg("payment verification failed")
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	payload := f.buildOrder(in, paymentDescriptor{
		Type:              string(MethodUPI),
		RazorpayOrderID:   completion.OrderID,
		RazorpayPaymentID: completion.PaymentID,
		Status:            "completed",
	}, "Processing")

	if err := f.api.Post(ctx, "/orders/add", payload, nil); err != nil {
		return nil, fmt.Errorf("place order: %w", backendMessage(err))
	}

	if err := f.cart.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("order placed but cart clear failed")
	}

	log.Info().
		Str("paymentId", completion.PaymentID).
		Float64("total", payload.TotalPrice).
		Msg("paid order placed")

	return &Receipt{
		Total:       payload.TotalPrice,
		OrderStatus: payload.Status,
		PaymentID:   completion.PaymentID,
	}, nil
}
