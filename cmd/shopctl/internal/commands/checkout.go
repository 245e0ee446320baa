package commands

import (
	"context"
	"fmt"

	"github.com/healthhub/shopctl/internal/checkout"
)

type CheckoutCmd struct {
	Name    string `help:"Recipient name." required:""`
	Address string `help:"Shipping address." required:""`
	Phone   string `help:"Contact phone number." required:""`
	Email   string `help:"Contact email address." required:""`
	Method  string `help:"Payment method." enum:"cod,upi,card" default:"cod"`
	UPIID   string `name:"upi-id" help:"UPI id, required for the upi method."`
}

func (c *CheckoutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.cart.Load(ctx); err != nil {
		return err
	}

	authorizer := &checkout.LoopbackAuthorizer{
		KeyID:        app.cfg.Razorpay.KeyID,
		MerchantName: "Diabetes Health Hub",
	}
	flow := checkout.New(app.api, app.session, app.cart, authorizer)

	in := checkout.Input{
		Shipping: checkout.ShippingInfo{
			Name:    c.Name,
			Address: c.Address,
			Phone:   c.Phone,
			Email:   c.Email,
		},
		Method: checkout.Method(c.Method),
		UPIID:  c.UPIID,
	}

	receipt, err := flow.Submit(ctx, in)
	if err != nil {
		return err
	}

	fmt.Printf("Order placed. Status: %s, total ₹%.2f\n", receipt.OrderStatus, receipt.Total)
	if receipt.PaymentID != "" {
		fmt.Printf("Payment id: %s\n", receipt.PaymentID)
	}
	return nil
}
