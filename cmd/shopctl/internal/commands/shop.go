package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthhub/shopctl/internal/tui"
)

type ShopCmd struct{}

func (s *ShopCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	userName := ""
	if user, ok := app.session.User(); ok {
		userName = user.Name
	}

	program := tea.NewProgram(
		tui.NewApp(app.catalog, app.cart, userName),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	model, err := program.Run()
	if err != nil {
		return fmt.Errorf("storefront exited: %w", err)
	}
	if a, ok := model.(tui.App); ok && a.QuitMessage() != "" {
		fmt.Println(a.QuitMessage())
	}
	return nil
}
