// Package commands wires the shopctl CLI: every command builds the same
// client stack (config, session store, API client with the expiry watch
// attached) and runs one user flow against the backend.
package commands

import (
	"fmt"
	"os"

	"github.com/healthhub/shopctl/internal/api"
	"github.com/healthhub/shopctl/internal/cart"
	"github.com/healthhub/shopctl/internal/catalog"
	"github.com/healthhub/shopctl/internal/config"
	"github.com/healthhub/shopctl/internal/session"
)

// Globals are flags shared by every command.
type Globals struct {
	Debug   bool
	Version string

	// Config overrides the config file path (default ~/.shopctl/config.yaml).
	Config string

	// SessionDir overrides where the session is persisted, for tests.
	SessionDir string
}

// appContext is the assembled client stack a command runs against.
type appContext struct {
	cfg     *config.Config
	session *session.Store
	api     *api.Client
	cart    *cart.Store
	catalog *catalog.Client
}

// bootstrap loads config and the persisted session, then builds the API
// client with the credential source and expiry watch attached. The session
// load completes here, before any command code can query it.
func (g *Globals) bootstrap() (*appContext, error) {
	path := g.Config
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	sess, err := session.Open(g.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := api.New(cfg.BaseURL(), sess.Token)
	sess.Watch(client)
	sess.OnLogout(func() {
		fmt.Fprintln(os.Stderr, "Your session has ended. Run `shopctl login` to continue.")
	})

	return &appContext{
		cfg:     cfg,
		session: sess,
		api:     client,
		cart:    cart.New(client, sess),
		catalog: catalog.New(client),
	}, nil
}
