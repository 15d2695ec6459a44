// Command minikv-server runs the minikv key-value server.
//
// It serves RESP2 on server.redis.addr (default 127.0.0.1:6379) and the
// admin endpoints /metrics and /healthz on server.http.addr (default
// 127.0.0.1:9121). Configuration comes from an optional YAML file,
// MINIKV_* environment variables and command-line flags, in increasing
// priority.
package main
