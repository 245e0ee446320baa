package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthhub/shopctl/internal/catalog"
)

// shelf is one browsable product tab.
type shelf int

const (
	shelfFood shelf = iota
	shelfEquipment
	shelfArticles
)

var shelfNames = [...]string{"Food", "Equipment", "Articles"}

// product is the tab-agnostic row the catalog screen renders. Articles carry
// no price and cannot be added to the cart.
type product struct {
	ID       string
	Name     string
	Detail   string
	Price    float64
	Type     string
	ImageURL string
	ForSale  bool
}

type shelfLoadedMsg struct {
	shelf    shelf
	products []product
	err      error
}

type catalogModel struct {
	client  *catalog.Client
	shelf   shelf
	shelves [3][]product
	loaded  [3]bool
	cursor  int
	errMsg  string
	width   int
	height  int
}

func newCatalogModel(c *catalog.Client) catalogModel {
	return catalogModel{client: c}
}

func (m catalogModel) Init() tea.Cmd {
	return tea.Batch(m.load(shelfFood), m.load(shelfEquipment), m.load(shelfArticles))
}

func (m catalogModel) load(s shelf) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		switch s {
		case shelfFood:
			food, err := c.ListFood(context.Background())
			if err != nil {
				return shelfLoadedMsg{shelf: s, err: err}
			}
			products := make([]product, 0, len(food))
			for _, f := range food {
				products = append(products, product{
					ID: f.ID, Name: f.Name, Detail: f.Category,
					Price: f.Price, Type: "Food", ImageURL: f.ImageURL, ForSale: true,
				})
			}
			return shelfLoadedMsg{shelf: s, products: products}

		case shelfEquipment:
			equipment, err := c.ListEquipment(context.Background())
			if err != nil {
				return shelfLoadedMsg{shelf: s, err: err}
			}
			products := make([]product, 0, len(equipment))
			for _, e := range equipment {
				products = append(products, product{
					ID: e.ID, Name: e.Name, Detail: e.Category,
					Price: e.Price, Type: "Equipment", ImageURL: e.ImageURL, ForSale: true,
				})
			}
			return shelfLoadedMsg{shelf: s, products: products}

		default:
			articles, err := c.ListArticles(context.Background())
			if err != nil {
				return shelfLoadedMsg{shelf: s, err: err}
			}
			products := make([]product, 0, len(articles))
			for _, a := range articles {
				products = append(products, product{ID: a.ID, Name: a.Title, Detail: a.Category})
			}
			return shelfLoadedMsg{shelf: s, products: products}
		}
	}
}

// selected returns the product under the cursor, if any.
func (m catalogModel) selected() (product, bool) {
	items := m.shelves[m.shelf]
	if m.cursor < 0 || m.cursor >= len(items) {
		return product{}, false
	}
	return items[m.cursor], true
}

func (m catalogModel) Update(msg tea.Msg) (catalogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shelfLoadedMsg:
		m.loaded[msg.shelf] = true
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.shelves[msg.shelf] = msg.products
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "right":
			m.shelf = (m.shelf + 1) % 3
			m.cursor = 0
		case "shift+tab", "left":
			m.shelf = (m.shelf + 2) % 3
			m.cursor = 0
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.shelves[m.shelf])-1 {
				m.cursor++
			}
		case "r":
			m.loaded[m.shelf] = false
			return m, m.load(m.shelf)
		}
	}
	return m, nil
}

func (m catalogModel) View() string {
	var sb strings.Builder

	var tabs []string
	for i, name := range shelfNames {
		if shelf(i) == m.shelf {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	sb.WriteString(strings.Join(tabs, "") + "\n\n")

	items := m.shelves[m.shelf]
	switch {
	case !m.loaded[m.shelf]:
		sb.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case len(items) == 0:
		sb.WriteString(" " + dimStyle.Render("nothing here yet") + "\n")
	default:
		for i, p := range items {
			line := fmt.Sprintf("  %-40s %-16s", truncate(p.Name, 40), truncate(p.Detail, 16))
			if p.ForSale {
				line += priceStyle.Render(fmt.Sprintf("₹%.2f", p.Price))
			}
			if i == m.cursor {
				line = selectedStyle.Render("▸" + line[1:])
			}
			sb.WriteString(line + "\n")
		}
	}

	if m.errMsg != "" {
		sb.WriteString("\n " + errStyle.Render(m.errMsg) + "\n")
	}

	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
