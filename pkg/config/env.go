package config

import "strings"

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// NormalizeEnvironment lowercases an environment name. Empty means development.
func NormalizeEnvironment(env string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" {
		return EnvDevelopment
	}
	return env
}

// IsProductionLike reports whether env is staging or production.
// Use this when you need to enforce production-like configuration requirements.
func IsProductionLike(env string) bool {
	env = NormalizeEnvironment(env)
	return env == EnvStaging || env == EnvProduction
}
