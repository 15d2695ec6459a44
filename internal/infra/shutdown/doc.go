// Package shutdown coordinates graceful process termination.
//
// Components register named hooks; on SIGINT, SIGTERM or context
// cancellation the hooks run in reverse registration order under a
// shared deadline.
//
//	h := shutdown.NewHandler(10*time.Second, log)
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
