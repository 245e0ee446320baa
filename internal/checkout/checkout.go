// Package checkout implements the one-shot order flow: client-side
// validation, optional payment authorization through an external gateway,
// and order submission. The payment path is strictly sequenced (authorize
// externally, verify server-side, only then create the order) so an order
// can never be recorded as paid without independent confirmation.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/healthhub/shopctl/internal/api"
	"github.com/healthhub/shopctl/internal/cart"
	"github.com/healthhub/shopctl/internal/session"
)

// Method identifies how the order will be paid.
type Method string

const (
	MethodCOD  Method = "cod"
	MethodUPI  Method = "upi"
	MethodCard Method = "card"
)

// Validation and flow errors. Validate returns the first applicable one.
var (
	ErrShippingIncomplete     = errors.New("fill in all shipping information fields")
	ErrNotAuthenticated       = errors.New("please login to checkout")
	ErrEmptyCart              = errors.New("your cart is empty")
	ErrUPIIDRequired          = errors.New("please enter your UPI ID")
	ErrInvalidTotal           = errors.New("invalid total price")
	ErrCheckoutInFlight       = errors.New("a checkout is already in progress")
	ErrVerificationFailed     = errors.New("payment verification failed, please contact support")
	ErrAuthorizationAbandoned = errors.New("payment authorization was not completed")
)

// ShippingInfo is the delivery contact block on an order.
type ShippingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

func (si ShippingInfo) complete() bool {
	return strings.TrimSpace(si.Name) != "" &&
		strings.TrimSpace(si.Address) != "" &&
		strings.TrimSpace(si.Phone) != "" &&
		strings.TrimSpace(si.Email) != ""
}

func (si ShippingInfo) trimmed() ShippingInfo {
	return ShippingInfo{
		Name:    strings.TrimSpace(si.Name),
		Address: strings.TrimSpace(si.Address),
		Phone:   strings.TrimSpace(si.Phone),
		Email:   strings.TrimSpace(si.Email),
	}
}

// Input is everything the user supplies at checkout.
type Input struct {
	Shipping ShippingInfo
	Method   Method
	UPIID    string
}

// Receipt summarizes a successfully placed order.
type Receipt struct {
	Total       float64
	OrderStatus string
	PaymentID   string
}

type orderItem struct {
	ItemID   string `json:"itemId"`
	ItemType string `json:"itemType"`
	Quantity int    `json:"quantity"`
}

type paymentDescriptor struct {
	Type              string `json:"type"`
	RazorpayOrderID   string `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string `json:"razorpayPaymentId,omitempty"`
	Status            string `json:"status"`
}

type orderPayload struct {
	UserID       string            `json:"userId"`
	Items        []orderItem       `json:"items"`
	TotalPrice   float64           `json:"totalPrice"`
	ShippingInfo ShippingInfo      `json:"shippingInfo"`
	Payment      paymentDescriptor `json:"paymentMethod"`
	Status       string            `json:"status"`
}

// Flow runs checkouts against the current session and cart.
type Flow struct {
	api        *api.Client
	session    *session.Store
	cart       *cart.Store
	authorizer Authorizer

	busy atomic.Bool
}

// New creates a checkout flow. authorizer is only consulted for the UPI
// method; it may be nil when that method is never offered.
func New(c *api.Client, s *session.Store, crt *cart.Store, authorizer Authorizer) *Flow {
	return &Flow{api: c, session: s, cart: crt, authorizer: authorizer}
}

// Busy reports whether a submission is in flight. The caller must gate the
// submit action on it to avoid duplicate orders from repeated activation.
func (f *Flow) Busy() bool {
	return f.busy.Load()
}

// Validate fails closed with the first applicable reason, in the same order
// the storefront checks: shipping fields, authentication, cart contents,
// UPI id, total.
func (f *Flow) Validate(in Input) error {
	if !in.Shipping.complete() {
		return ErrShippingIncomplete
	}
	if u, ok := f.session.User(); !ok || u.ID == "" {
		return ErrNotAuthenticated
	}
	if len(f.cart.Items()) == 0 {
		return ErrEmptyCart
	}
	if in.Method == MethodUPI && strings.TrimSpace(in.UPIID) == "" {
		return ErrUPIIDRequired
	}
	total := f.cart.Total()
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return ErrInvalidTotal
	}
	return nil
}

// Submit validates and places the order. Only one submission may be in
// flight at a time; a second call returns ErrCheckoutInFlight.
func (f *Flow) Submit(ctx context.Context, in Input) (*Receipt, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer f.busy.Store(false)

	if err := f.Validate(in); err != nil {
		return nil, err
	}

	if in.Method == MethodUPI {
		return f.submitWithAuthorization(ctx, in)
	}
	return f.submitDirect(ctx, in)
}

// submitDirect places a pay-on-delivery (or card-on-file) order: one order
// creation call, then a cart clear. On failure the cart is left untouched so
// the user can retry.
func (f *Flow) submitDirect(ctx context.Context, in Input) (*Receipt, error) {
	paymentStatus := "completed"
	if in.Method == MethodCOD {
		paymentStatus = "pending"
	}

	payload := f.buildOrder(in, paymentDescriptor{
		Type:   string(in.Method),
		Status: paymentStatus,
	}, "Pending")

	if err := f.api.Post(ctx, "/orders/add", payload, nil); err != nil {
		return nil, fmt.Errorf("place order: %w", backendMessage(err))
	}

	if err := f.cart.Clear(ctx); err != nil {
		// The order exists; a failed clear only leaves stale cart state.
		log.Warn().Err(err).Msg("order placed but cart clear failed")
	}

	log.Info().Str("method", string(in.Method)).Float64("total", payload.TotalPrice).Msg("order placed")

	return &Receipt{Total: payload.TotalPrice, OrderStatus: payload.Status}, nil
}

// buildOrder constructs the order payload from the current cart mirror.
// Quantities are floored at one; the backend stocks only Food and Equipment
// item types, everything non-equipment ships as Food.
func (f *Flow) buildOrder(in Input, payment paymentDescriptor, status string) orderPayload {
	u, _ := f.session.User()
	items := f.cart.Items()

	orderItems := make([]orderItem, 0, len(items))
	for _, it := range items {
		itemType := "Food"
		if strings.EqualFold(it.Type, "equipment") {
			itemType = "Equipment"
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		orderItems = append(orderItems, orderItem{
			ItemID:   it.ProductID,
			ItemType: itemType,
			Quantity: qty,
		})
	}

	return orderPayload{
		UserID:       u.ID,
		Items:        orderItems,
		TotalPrice:   f.cart.Total(),
		ShippingInfo: in.Shipping.trimmed(),
		Payment:      payment,
		Status:       status,
	}
}

// backendMessage prefers the backend's own message for user display.
func backendMessage(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return err
}
