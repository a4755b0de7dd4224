// Package config surfaces environment configuration through small
// accessor interfaces so packages depend only on the settings they use.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
}

func New() (Config, error) {
	c := mainConfig{}
	if err := env.Parse(&c.EnvVars); err != nil {
		return nil, errors.Wrap(err, "[config.New] env vars")
	}
	if err := env.Parse(&c.Cors); err != nil {
		return nil, errors.Wrap(err, "[config.New] cors")
	}
	if err := env.Parse(&c.OAuth); err != nil {
		return nil, errors.Wrap(err, "[config.New] oauth client")
	}
	if err := env.Parse(&c.Security); err != nil {
		return nil, errors.Wrap(err, "[config.New] security")
	}
	return c, nil
}
