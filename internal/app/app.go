package app

import (
	"fmt"

	"github.com/florianilch/switchboard/internal/directory"
	"github.com/florianilch/switchboard/internal/kvstore"
	"github.com/florianilch/switchboard/internal/switcher"
	"github.com/florianilch/switchboard/internal/tokenstore"
)

// App wires the store, account directory, credential stores, and switch
// algorithm together from configuration.
type App struct {
	cfg *Config

	Store         kvstore.Store
	Directory     *directory.Directory
	Tokens        *tokenstore.Store[tokenstore.Token]
	Registrations *tokenstore.Store[tokenstore.ClientRegistration]
	Switcher      *switcher.Switcher
}

// New creates a new App instance. The authenticator is the re-authentication
// capability the switch algorithm falls through to; it is injected rather
// than constructed here because authorization flows live outside this core.
func New(cfg *Config, auth switcher.Authenticator) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if auth == nil {
		return nil, fmt.Errorf("missing authenticator")
	}

	store, err := cfg.Storage.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	dir := directory.New(store)

	return &App{
		cfg:           cfg,
		Store:         store,
		Directory:     dir,
		Tokens:        tokenstore.New[tokenstore.Token](store),
		Registrations: tokenstore.NewRegistrationStore(store),
		Switcher:      switcher.New(dir, auth),
	}, nil
}

// Service returns the configured default service scope.
func (a *App) Service() string {
	return a.cfg.Service
}
