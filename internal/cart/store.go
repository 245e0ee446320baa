// Package cart maintains the client-side mirror of the backend's per-user
// cart. The mirror is never computed locally: every mutation is sent to the
// backend and the local item list is replaced wholesale by the server's
// returned state, so the client cannot drift from the authoritative cart even
// under partial failure.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/healthhub/shopctl/internal/api"
	"github.com/healthhub/shopctl/internal/session"
)

// ErrAuthRequired is returned when the backend rejected the credential. The
// session has already been logged out; the caller's job is to route the user
// to login, not to surface an error message.
var ErrAuthRequired = errors.New("authentication required")

// Item is one line in the cart.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Type      string  `json:"type,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// Store mediates all cart mutations through the backend.
type Store struct {
	api     *api.Client
	session *session.Store

	mu      sync.Mutex
	items   []Item
	loading bool
	errMsg  string
	loadSFG singleflight.Group
}

// New creates a cart store bound to the given session.
func New(c *api.Client, s *session.Store) *Store {
	return &Store{api: c, session: s}
}

// Items returns a copy of the current mirror.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Loading reports whether a cart operation is in flight. Callers use it as a
// cooperative gate against overlapping mutations.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the short message from the most recent failed operation, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Total is the sum of price times quantity over the mirror. Missing values
// contribute zero; an empty cart totals zero.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// cartEnvelope accepts both response shapes the backend uses:
// {cart:{items:[...]}} and {items:[...]}.
type cartEnvelope struct {
	Cart *struct {
		Items json.RawMessage `json:"items"`
	} `json:"cart"`
	Items json.RawMessage `json:"items"`
}

func (e *cartEnvelope) itemList() ([]Item, bool) {
	raw := e.Items
	if e.Cart != nil {
		raw = e.Cart.Items
	}
	if len(raw) == 0 {
		return nil, false
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Load fetches the cart for the current session and replaces the mirror.
// Without a credential it resets to empty with no network call. Concurrent
// loads are collapsed into a single request.
func (s *Store) Load(ctx context.Context) error {
	if s.session.Token() == "" {
		s.mu.Lock()
		s.items = nil
		s.errMsg = ""
		s.mu.Unlock()
		return nil
	}

	_, err, _ := s.loadSFG.Do("load", func() (any, error) {
		s.begin()
		defer s.end()

		var env cartEnvelope
		if err := s.api.Get(ctx, "/cart", &env); err != nil {
			s.mu.Lock()
			s.items = nil
			s.mu.Unlock()
			return nil, s.fail("load cart", "Failed to load cart", err)
		}

		items, ok := env.itemList()
		if !ok {
			log.Warn().Msg("cart response has no item list, treating as empty")
		}
		s.mu.Lock()
		s.items = items
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// Add sends a new line item to the backend. A missing or non-positive
// quantity makes the call a no-op.
func (s *Store) Add(ctx context.Context, item Item) error {
	if item.Quantity <= 0 {
		return nil
	}

	s.begin()
	defer s.end()

	var env cartEnvelope
	err := s.api.Post(ctx, "/cart", map[string]any{"items": []Item{item}}, &env)
	if err != nil {
		return s.fail("add to cart", "Failed to add item to cart", err)
	}
	s.applyEcho("add to cart", &env)
	return nil
}

// UpdateQuantity sets the quantity of a line item. A negative quantity makes
// the call a no-op; zero is forwarded and the backend decides (the echoed
// list is authoritative either way).
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return nil
	}

	s.begin()
	defer s.end()

	var env cartEnvelope
	err := s.api.Put(ctx, "/cart/"+url.PathEscape(productID), map[string]int{"quantity": quantity}, &env)
	if err != nil {
		return s.fail("update quantity", "Failed to update item quantity", err)
	}
	s.applyEcho("update quantity", &env)
	return nil
}

// Remove deletes a line item.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.begin()
	defer s.end()

	var env cartEnvelope
	err := s.api.Delete(ctx, "/cart/"+url.PathEscape(productID), &env)
	if err != nil {
		return s.fail("remove from cart", "Failed to remove item from cart", err)
	}
	s.applyEcho("remove from cart", &env)
	return nil
}

// Clear empties the cart. On success the mirror is set to empty directly;
// empty needs no server echo to be unambiguous.
func (s *Store) Clear(ctx context.Context) error {
	s.begin()
	defer s.end()

	if err := s.api.Delete(ctx, "/cart", nil); err != nil {
		return s.fail("clear cart", "Failed to clear cart", err)
	}
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// applyEcho replaces the mirror with the backend's echoed item list. An
// unreadable list is treated as empty with a warning.
func (s *Store) applyEcho(op string, env *cartEnvelope) {
	items, ok := env.itemList()
	if !ok {
		log.Warn().Str("op", op).Msg("cart echo has no item list, treating as empty")
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// fail maps a request failure into store state: an auth rejection logs the
// session out and surfaces nothing further; everything else stores a short
// message for display and logs the structured detail.
func (s *Store) fail(op, short string, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == 401 {
			s.session.Logout()
			return fmt.Errorf("%s: %w", op, ErrAuthRequired)
		}
		log.Error().
			Str("op", op).
			Int("status", apiErr.Status).
			Str("body", apiErr.Body).
			Msg("cart request rejected")
	} else {
		log.Error().Str("op", op).Err(err).Msg("cart request failed")
	}

	s.mu.Lock()
	s.errMsg = short
	s.mu.Unlock()
	return fmt.Errorf("%s: %w", op, err)
}
