// Package main is the entry point for minikv-cli.
//
// Usage:
//
//	minikv-cli [global flags] [command] [args]
//	minikv-cli -s 127.0.0.1:6379 set --px 5000 greeting hello
//	minikv-cli -o json get greeting
//
// Without a command it opens an interactive session.
package main
