// Package httpserver serves the minikv admin endpoints over HTTP.
//
// Routes:
//
//	GET /metrics   Prometheus text exposition
//	GET /healthz   {"status":"ok","version":"..."}
//
// Every route runs behind the RequestID, Recover and AccessLog
// middlewares.
package httpserver
