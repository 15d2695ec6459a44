package config

import "time"

// ServerConfig is the root configuration for minikv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// ReadTimeout bounds reading the rest of a message once its first
	// byte has arrived.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds writing one reply.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout bounds the wait for the next message. Zero uses the
	// server default of five minutes.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit is the number of commands per second allowed on one
	// connection. Zero disables limiting.
	RateLimit int `koanf:"rate_limit"`
}

// HTTPConfig configures the admin HTTP endpoint (/metrics, /healthz).
// An empty Addr disables it.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// Shards is the number of lock shards. 1 means one lock for the
	// whole keyspace.
	Shards int `koanf:"shards"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
