package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/healthhub/shopctl/cmd/shopctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login     commands.LoginCmd     `cmd:"" help:"Log in to the store"`
		Logout    commands.LogoutCmd    `cmd:"" help:"Log out and forget the saved session"`
		Whoami    commands.WhoamiCmd    `cmd:"" help:"Show the logged-in user"`
		Cart      commands.CartCmd      `cmd:"" help:"Manage the shopping cart"`
		Checkout  commands.CheckoutCmd  `cmd:"" help:"Place an order for the cart"`
		Articles  commands.ArticlesCmd  `cmd:"" help:"Browse and manage articles"`
		Food      commands.FoodCmd      `cmd:"" help:"Browse and manage food products"`
		Equipment commands.EquipmentCmd `cmd:"" help:"Browse and manage equipment products"`
		Shop      commands.ShopCmd      `cmd:"" help:"Open the interactive storefront"`
		Config    string                `help:"Path to the config file." type:"path" env:"SHOPCTL_CONFIG"`
		Debug     bool                  `help:"Enable debug mode." env:"SHOPCTL_DEBUG"`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Config: cli.Config})
	cmd.FatalIfErrorf(err)
}
