// Package config provides the minikv-server configuration.
//
//   - spec.go: ServerConfig struct definition (koanf tags)
//   - default.go: default values
//   - verify.go: validation of addresses, timeouts and limits
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// MINIKV_* environment variables and command-line flags.
package config
