package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthhub/shopctl/internal/cart"
)

// cartChangedMsg is emitted after any cart mutation; the view re-reads the
// store's mirror, which already holds the server's echoed state.
type cartChangedMsg struct {
	err error
}

type cartViewModel struct {
	store  *cart.Store
	cursor int
	busy   bool
	width  int
	height int
}

func newCartViewModel(store *cart.Store) cartViewModel {
	return cartViewModel{store: store}
}

func (m cartViewModel) mutate(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return cartChangedMsg{err: fn(context.Background())}
	}
}

func (m cartViewModel) Update(msg tea.Msg) (cartViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case cartChangedMsg:
		m.busy = false
		if items := m.store.Items(); m.cursor >= len(items) && m.cursor > 0 {
			m.cursor = len(items) - 1
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.busy {
			// One mutation at a time; the loading flag is the gate.
			return m, nil
		}
		items := m.store.Items()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(items)-1 {
				m.cursor++
			}
		case "+", "=":
			if m.cursor < len(items) {
				it := items[m.cursor]
				m.busy = true
				return m, m.mutate(func(ctx context.Context) error {
					return m.store.UpdateQuantity(ctx, it.ProductID, it.Quantity+1)
				})
			}
		case "-":
			if m.cursor < len(items) {
				it := items[m.cursor]
				m.busy = true
				return m, m.mutate(func(ctx context.Context) error {
					return m.store.UpdateQuantity(ctx, it.ProductID, it.Quantity-1)
				})
			}
		case "x", "delete":
			if m.cursor < len(items) {
				it := items[m.cursor]
				m.busy = true
				return m, m.mutate(func(ctx context.Context) error {
					return m.store.Remove(ctx, it.ProductID)
				})
			}
		case "C":
			if len(items) > 0 {
				m.busy = true
				return m, m.mutate(m.store.Clear)
			}
		}
	}
	return m, nil
}

func (m cartViewModel) View() string {
	var sb strings.Builder

	items := m.store.Items()
	if len(items) == 0 {
		sb.WriteString(" " + dimStyle.Render("your cart is empty") + "\n")
	} else {
		for i, it := range items {
			line := fmt.Sprintf("  %-36s x%-4d %s", truncate(it.Name, 36), it.Quantity,
				priceStyle.Render(fmt.Sprintf("₹%.2f", it.Price*float64(it.Quantity))))
			if i == m.cursor {
				line = selectedStyle.Render("▸" + line[1:])
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n  " + titleStyle.Render(fmt.Sprintf("Total ₹%.2f", m.store.Total())) + "\n")
	}

	if m.busy {
		sb.WriteString("\n " + dimStyle.Render("updating...") + "\n")
	}
	if msg := m.store.Err(); msg != "" {
		sb.WriteString("\n " + errStyle.Render(msg) + "\n")
	}

	return sb.String()
}

// authRequired reports whether a cart mutation failed because the session
// was logged out; the app reacts by leaving the alt screen.
func authRequired(err error) bool {
	return errors.Is(err, cart.ErrAuthRequired)
}
