package tui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/healthhub/shopctl/internal/api"
	"github.com/healthhub/shopctl/internal/catalog"
)

func TestCatalogModelShelfNavigation(t *testing.T) {
	m := newCatalogModel(nil)
	m.shelves[shelfFood] = []product{{ID: "f1", Name: "oats"}, {ID: "f2", Name: "millet"}}
	m.loaded = [3]bool{true, true, true}

	key := func(s string) tea.KeyMsg {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, shelfEquipment, m.shelf)
	require.Zero(t, m.cursor)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, shelfFood, m.shelf)

	m, _ = m.Update(key("j"))
	require.Equal(t, 1, m.cursor)
	m, _ = m.Update(key("j"))
	require.Equal(t, 1, m.cursor, "cursor stops at the last row")
	m, _ = m.Update(key("k"))
	require.Zero(t, m.cursor)

	p, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, "f1", p.ID)
}

func TestCatalogModelLoadedMsg(t *testing.T) {
	m := newCatalogModel(nil)

	m, _ = m.Update(shelfLoadedMsg{shelf: shelfFood, products: []product{{ID: "f1", Name: "oats", ForSale: true}}})
	require.True(t, m.loaded[shelfFood])
	require.Len(t, m.shelves[shelfFood], 1)

	m, _ = m.Update(shelfLoadedMsg{shelf: shelfArticles, err: assertErr{}})
	require.True(t, m.loaded[shelfArticles])
	require.Contains(t, m.errMsg, "backend unavailable")
}

type assertErr struct{}

func (assertErr) Error() string { return "backend unavailable" }

func TestCatalogModelLoadBuildsProducts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /food/getall", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"f1","name":"oats","category":"grains","price":120}]`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /articles", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"a1","title":"Managing sugar spikes","category":"diet"}]`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := newCatalogModel(catalog.New(api.New(srv.URL, nil)))

	msg := m.load(shelfFood)()
	loaded, ok := msg.(shelfLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	require.Len(t, loaded.products, 1)
	require.Equal(t, "Food", loaded.products[0].Type)
	require.True(t, loaded.products[0].ForSale)

	msg = m.load(shelfArticles)()
	loaded, ok = msg.(shelfLoadedMsg)
	require.True(t, ok)
	require.Len(t, loaded.products, 1)
	require.False(t, loaded.products[0].ForSale, "articles cannot be added to the cart")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "exactly...", truncate("exactly-ten!", 10))
	require.Len(t, truncate("a very long product name indeed", 10), 10)
}
