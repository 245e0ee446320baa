// Package catalog holds the thin clients behind the storefront's browse and
// admin screens. These share nothing with the cart beyond producing items to
// add to it.
package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/healthhub/shopctl/internal/api"
)

// Article is an editorial piece on the platform.
type Article struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"image,omitempty"`
}

// Food is a diabetes-friendly food product.
type Food struct {
	ID          string  `json:"_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
}

// Equipment is a care device such as a glucometer or test strips.
type Equipment struct {
	ID          string  `json:"_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
}

// Client wraps the catalog endpoints.
type Client struct {
	api *api.Client
}

// New creates a catalog client.
func New(c *api.Client) *Client {
	return &Client{api: c}
}

// ListArticles fetches all published articles.
func (c *Client) ListArticles(ctx context.Context) ([]Article, error) {
	var articles []Article
	if err := c.api.Get(ctx, "/articles", &articles); err != nil {
		return nil, fmt.Errorf("catalog.ListArticles: %w", err)
	}
	return articles, nil
}

// CreateArticle publishes a new article (admin).
func (c *Client) CreateArticle(ctx context.Context, a Article) error {
	if err := c.api.Post(ctx, "/articles", a, nil); err != nil {
		return fmt.Errorf("catalog.CreateArticle: %w", err)
	}
	return nil
}

// DeleteArticle removes an article by id (admin).
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/articles/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("catalog.DeleteArticle: %w", err)
	}
	return nil
}

// ListFood fetches all food products.
func (c *Client) ListFood(ctx context.Context) ([]Food, error) {
	var food []Food
	if err := c.api.Get(ctx, "/food/getall", &food); err != nil {
		return nil, fmt.Errorf("catalog.ListFood: %w", err)
	}
	return food, nil
}

// CreateFood adds a new food product (admin).
func (c *Client) CreateFood(ctx context.Context, f Food) error {
	if err := c.api.Post(ctx, "/food/add", f, nil); err != nil {
		return fmt.Errorf("catalog.CreateFood: %w", err)
	}
	return nil
}

// DeleteFood removes a food product by id (admin).
func (c *Client) DeleteFood(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/food/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("catalog.DeleteFood: %w", err)
	}
	return nil
}

// ListEquipment fetches all care equipment.
func (c *Client) ListEquipment(ctx context.Context) ([]Equipment, error) {
	var equipment []Equipment
	if err := c.api.Get(ctx, "/equipment/getall", &equipment); err != nil {
		return nil, fmt.Errorf("catalog.ListEquipment: %w", err)
	}
	return equipment, nil
}

// CreateEquipment adds a new equipment product (admin).
func (c *Client) CreateEquipment(ctx context.Context, e Equipment) error {
	if err := c.api.Post(ctx, "/equipment/add", e, nil); err != nil {
		return fmt.Errorf("catalog.CreateEquipment: %w", err)
	}
	return nil
}

// DeleteEquipment removes an equipment product by id (admin).
func (c *Client) DeleteEquipment(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/equipment/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("catalog.DeleteEquipment: %w", err)
	}
	return nil
}
