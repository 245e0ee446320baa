package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healthhub/shopctl/internal/api"
)

func TestListEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /articles", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"a1","title":"Managing sugar spikes","category":"diet"}]`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /food/getall", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"f1","name":"steel-cut oats","price":120}]`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /equipment/getall", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"e1","name":"glucometer","price":1200,"imageUrl":"https://img/e1"}]`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(api.New(srv.URL, nil))
	ctx := context.Background()

	articles, err := c.ListArticles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "Managing sugar spikes", articles[0].Title)

	food, err := c.ListFood(ctx)
	require.NoError(t, err)
	require.Len(t, food, 1)
	require.Equal(t, float64(120), food[0].Price)

	equipment, err := c.ListEquipment(ctx)
	require.NoError(t, err)
	require.Len(t, equipment, 1)
	require.Equal(t, "https://img/e1", equipment[0].ImageURL)
}

func TestAdminEndpoints(t *testing.T) {
	type call struct {
		method string
		path   string
	}
	var calls []call

	mux := http.NewServeMux()
	record := func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{method: r.Method, path: r.URL.Path})
		w.Write([]byte(`{"success":true}`)) //nolint:errcheck
	}
	mux.HandleFunc("POST /articles", func(w http.ResponseWriter, r *http.Request) {
		var a Article
		require.NoError(t, json.NewDecoder(r.Body).Decode(&a))
		require.Equal(t, "Managing sugar spikes", a.Title)
		record(w, r)
	})
	mux.HandleFunc("POST /food/add", record)
	mux.HandleFunc("POST /equipment/add", record)
	mux.HandleFunc("DELETE /articles/{id}", record)
	mux.HandleFunc("DELETE /food/{id}", record)
	mux.HandleFunc("DELETE /equipment/{id}", record)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(api.New(srv.URL, nil))
	ctx := context.Background()

	require.NoError(t, c.CreateArticle(ctx, Article{Title: "Managing sugar spikes", Content: "..."}))
	require.NoError(t, c.CreateFood(ctx, Food{Name: "oats", Price: 120}))
	require.NoError(t, c.CreateEquipment(ctx, Equipment{Name: "glucometer", Price: 1200}))
	require.NoError(t, c.DeleteArticle(ctx, "a1"))
	require.NoError(t, c.DeleteFood(ctx, "f1"))
	require.NoError(t, c.DeleteEquipment(ctx, "e1"))

	require.Equal(t, []call{
		{method: "POST", path: "/articles"},
		{method: "POST", path: "/food/add"},
		{method: "POST", path: "/equipment/add"},
		{method: "DELETE", path: "/articles/a1"},
		{method: "DELETE", path: "/food/f1"},
		{method: "DELETE", path: "/equipment/e1"},
	}, calls)
}

func TestBackendErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"admin only"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(api.New(srv.URL, nil))
	err := c.CreateFood(context.Background(), Food{Name: "oats"})
	require.Error(t, err)
	require.True(t, api.IsStatus(err, http.StatusForbidden))
	require.Contains(t, err.Error(), "catalog.CreateFood")
}
