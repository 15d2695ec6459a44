// Package command defines the minikv-cli commands using urfave/cli/v2.
//
//   - root.go: application, global flags, interactive mode
//   - kv.go: ping, echo, get and set
//
// With no subcommand the CLI opens an interactive session on one
// connection.
package command
