package client

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/report-atlas/pkg/services/config"
)

// TokenSource supplies the bearer token for each request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// EnvToken reads the named environment variable on every request
type EnvToken string

func (t EnvToken) Token(_ context.Context) (string, error) {
	return os.Getenv(string(t)), nil
}

type profileToken struct {
	registry config.Registry
	profile  string
}

// NewProfileToken reads the token from a credentials profile
func NewProfileToken(registry config.Registry, profile string) TokenSource {
	return &profileToken{registry: registry, profile: profile}
}

func (p *profileToken) Token(ctx context.Context) (string, error) {
	prof, err := p.registry.GetProfile(ctx, p.profile)
	if err != nil {
		return "", fmt.Errorf("load profile token: %w", err)
	}
	return prof.Token, nil
}
