// Package confloader loads configuration with koanf.
//
// Sources, from lowest to highest priority:
//
//  1. Default values already present in the target struct
//  2. A YAML configuration file
//  3. Environment variables (MINIKV_ prefix)
//  4. Overrides, normally taken from command-line flags
//
// Environment variable names map to keys by dropping the prefix, lower-
// casing, and turning double underscores into dots, so single underscores
// survive inside key names:
//
//	MINIKV_SERVER__REDIS__READ_TIMEOUT=5s  ->  server.redis.read_timeout
//
// Watcher (fsnotify) reports writes to the configuration file so the
// server can re-load it at runtime.
package confloader
