// Package repl is the interactive mode of minikv-cli.
//
// Each input line is split into arguments (double quotes group words and
// accept Go escapes such as \n), sent to the server, and the reply is
// printed with the configured formatter. "help [prefix]" lists the
// supported commands; "exit" and "quit" leave the loop.
package repl
