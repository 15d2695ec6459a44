// Package connection is the minikv-cli client for the RESP port.
//
// A Client sends each command as an array of bulk strings and decodes
// one scalar reply, buffering partial reads until the reply is complete.
package connection
