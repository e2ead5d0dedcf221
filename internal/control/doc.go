// Package control exposes a running host to operators over JSON-RPC 2.0.
//
// Two transports share one method table: HTTP POST on /jsonrpc and a
// WebSocket on /jsonrpc/ws. Both require a bearer token. The methods are
//
//	system.getVersion  build information
//	host.status        scheduler state, queue depth and listeners
//	timers.list        pending timers in firing order
//	host.stop          ask the scheduler to shut down
//
// Client is the matching caller used by the warpjs status and stop
// commands.
package control
