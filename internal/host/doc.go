// Package host embeds a goja JavaScript runtime and drives it with a
// single-threaded, run-to-completion turn scheduler.
//
// A Host exposes three capability groups to scripts: deferred callbacks
// (setTimeout, setInterval and their clear counterparts), synchronous file
// access (the fs module) and a minimal HTTP server (the http module). The
// goja runtime is only ever touched from the goroutine calling Eval, Run or
// RunReady; timers and HTTP requests become ready on other goroutines and
// are handed over through the timer queue and the pending-request queue.
//
// The scheduler moves through these states:
//
//	Idle -> RunningTopLevel -> WaitingForWork <-> RunningCallback -> Shutdown
//
// An exception escaping a callback is logged as an uncaught script error
// and only ends that turn. A failure to bind a listening socket is fatal and
// moves the host to Shutdown.
package host
