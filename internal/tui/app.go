// Package tui is the interactive terminal storefront: tabbed catalog
// browsing and a cart screen. All cart changes go through the cart store, so
// what the screen shows is always the backend's confirmed state.
package tui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthhub/shopctl/internal/cart"
	"github.com/healthhub/shopctl/internal/catalog"
)

type view int

const (
	viewCatalog view = iota
	viewCart
)

// App is the root Bubbletea model.
type App struct {
	catalog  catalogModel
	cartView cartViewModel
	cart     *cart.Store
	view     view
	userName string
	quitMsg  string
	width    int
	height   int
}

// NewApp creates the storefront model. userName is shown in the header.
func NewApp(cat *catalog.Client, crt *cart.Store, userName string) App {
	return App{
		catalog:  newCatalogModel(cat),
		cartView: newCartViewModel(crt),
		cart:     crt,
		userName: userName,
	}
}

// QuitMessage explains why the app exited, if it exited on its own.
func (a App) QuitMessage() string {
	return a.quitMsg
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.catalog.Init(), a.loadCart())
}

func (a App) loadCart() tea.Cmd {
	store := a.cart
	return func() tea.Msg {
		return cartChangedMsg{err: store.Load(context.Background())}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.catalog, _ = a.catalog.Update(body)
		a.cartView, _ = a.cartView.Update(body)
		return a, nil

	case shelfLoadedMsg:
		var cmd tea.Cmd
		a.catalog, cmd = a.catalog.Update(msg)
		return a, cmd

	case cartChangedMsg:
		if authRequired(msg.err) {
			a.quitMsg = "Session expired. Run `shopctl login` and try again."
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.cartView, cmd = a.cartView.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "c":
			if a.view == viewCatalog {
				a.view = viewCart
				return a, nil
			}
		case "esc", "b":
			if a.view == viewCart {
				a.view = viewCatalog
				return a, nil
			}
		case "a", "enter":
			if a.view == viewCatalog {
				if p, ok := a.catalog.selected(); ok && p.ForSale {
					store := a.cart
					return a, func() tea.Msg {
						return cartChangedMsg{err: store.Add(context.Background(), cart.Item{
							ProductID: p.ID,
							Name:      p.Name,
							Type:      p.Type,
							Price:     p.Price,
							Quantity:  1,
							ImageURL:  p.ImageURL,
						})}
					}
				}
				return a, nil
			}
		}

		var cmd tea.Cmd
		switch a.view {
		case viewCatalog:
			a.catalog, cmd = a.catalog.Update(msg)
		case viewCart:
			a.cartView, cmd = a.cartView.Update(msg)
		}
		return a, cmd
	}

	return a, nil
}

func (a App) View() string {
	header := titleStyle.Render("Diabetes Health Hub") + dimStyle.Render("  ·  "+a.userName)
	count := 0
	for _, it := range a.cart.Items() {
		count += it.Quantity
	}
	header += dimStyle.Render("  ·  ") + priceStyle.Render("cart: "+strconv.Itoa(count))

	var body, help string
	switch a.view {
	case viewCart:
		body = a.cartView.View()
		help = "↑/↓ move · +/- quantity · x remove · C clear · esc back · q quit"
	default:
		body = a.catalog.View()
		help = "tab shelf · ↑/↓ move · a add to cart · c cart · r refresh · q quit"
	}

	return header + "\n\n" + body + "\n" + helpStyle.Render(" "+help) + "\n"
}
