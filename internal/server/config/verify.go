package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/minikv/internal/telemetry/logger"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("%w: server.redis.addr is required", ErrInvalid)
	}
	if _, _, err := net.SplitHostPort(cfg.Redis.Addr); err != nil {
		return fmt.Errorf("%w: server.redis.addr %q: %v", ErrInvalid, cfg.Redis.Addr, err)
	}
	if cfg.HTTP.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
			return fmt.Errorf("%w: server.http.addr %q: %v", ErrInvalid, cfg.HTTP.Addr, err)
		}
		if cfg.HTTP.Addr == cfg.Redis.Addr {
			return fmt.Errorf("%w: server.http.addr and server.redis.addr are both %q", ErrInvalid, cfg.HTTP.Addr)
		}
	}
	if cfg.Redis.ReadTimeout < 0 || cfg.Redis.WriteTimeout < 0 || cfg.Redis.IdleTimeout < 0 {
		return fmt.Errorf("%w: server.redis timeouts must not be negative", ErrInvalid)
	}
	if cfg.Redis.RateLimit < 0 {
		return fmt.Errorf("%w: server.redis.rate_limit must not be negative", ErrInvalid)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.Shards <= 0 || cfg.Shards&(cfg.Shards-1) != 0 {
		return fmt.Errorf("%w: storage.shards must be a power of 2, got %d", ErrInvalid, cfg.Shards)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
		return nil
	}
	return fmt.Errorf("%w: log.format %q", ErrInvalid, cfg.Format)
}
