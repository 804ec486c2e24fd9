// Package oauth builds the two-legged token source used to call the
// design-automation and object-storage APIs.
package oauth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dawrench-labs/dawrench-go/internal/platform/env"
)

const DefaultTokenURL = "https://developer.api.autodesk.com/authentication/v2/token"

var defaultScopes = []string{"code:all", "data:read", "data:write", "bucket:read", "bucket:create"}

type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ClientID:     env.String("DAWRENCH_CLIENT_ID", ""),
		ClientSecret: env.String("DAWRENCH_CLIENT_SECRET", ""),
		TokenURL:     env.String("DAWRENCH_TOKEN_URL", DefaultTokenURL),
		Scopes:       env.List("DAWRENCH_SCOPES", defaultScopes),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("DAWRENCH_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return errors.New("DAWRENCH_CLIENT_SECRET is required")
	}
	if c.TokenURL == "" {
		return errors.New("DAWRENCH_TOKEN_URL is required")
	}
	return nil
}

// TokenSource returns a caching source that refreshes the token shortly
// before it expires.
func TokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return cc.TokenSource(ctx), nil
}
