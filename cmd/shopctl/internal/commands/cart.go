package commands

import (
	"context"
	"fmt"

	"github.com/healthhub/shopctl/internal/cart"
)

type CartCmd struct {
	Show   CartShowCmd   `cmd:"" default:"1" help:"Show the cart."`
	Add    CartAddCmd    `cmd:"" help:"Add a product to the cart."`
	Set    CartSetCmd    `cmd:"" help:"Set the quantity of a cart line."`
	Remove CartRemoveCmd `cmd:"" help:"Remove a product from the cart."`
	Clear  CartClearCmd  `cmd:"" help:"Empty the cart."`
}

type CartShowCmd struct{}

func (c *CartShowCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.cart.Load(ctx); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

type CartAddCmd struct {
	ProductID string  `arg:"" help:"Product id to add."`
	Name      string  `help:"Product name." required:""`
	Type      string  `help:"Product type (food or equipment)." enum:"food,equipment" default:"food"`
	Price     float64 `help:"Unit price." required:""`
	Quantity  int     `help:"Quantity to add." default:"1"`
	ImageURL  string  `help:"Product image URL."`
}

func (c *CartAddCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	item := cart.Item{
		ProductID: c.ProductID,
		Name:      c.Name,
		Type:      c.Type,
		Price:     c.Price,
		Quantity:  c.Quantity,
		ImageURL:  c.ImageURL,
	}
	if err := app.cart.Add(ctx, item); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

type CartSetCmd struct {
	ProductID string `arg:"" help:"Product id to update."`
	Quantity  int    `arg:"" help:"New quantity."`
}

func (c *CartSetCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.cart.UpdateQuantity(ctx, c.ProductID, c.Quantity); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

type CartRemoveCmd struct {
	ProductID string `arg:"" help:"Product id to remove."`
}

func (c *CartRemoveCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.cart.Remove(ctx, c.ProductID); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

type CartClearCmd struct{}

func (c *CartClearCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("Cart emptied.")
	return nil
}

func printCart(store *cart.Store) {
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	for _, it := range items {
		fmt.Printf("%-24s %-32s x%-3d ₹%.2f\n", it.ProductID, it.Name, it.Quantity, it.Price*float64(it.Quantity))
	}
	fmt.Printf("Total: ₹%.2f\n", store.Total())
}
