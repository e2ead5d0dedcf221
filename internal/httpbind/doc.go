// Package httpbind owns the listening sockets of scripted HTTP servers.
//
// Connections are accepted and parsed by net/http on their own goroutines;
// every fully-read request becomes a PendingRequest pushed onto a bounded
// FIFO Queue shared by all bindings of a host. The script thread pops
// requests from the queue and answers them through the request's
// ResponseSink, which hands the response back to the connection goroutine.
//
// When the queue is full the connection is answered with 503 right away, so
// the memory held by queued requests stays bounded no matter how many
// clients connect.
package httpbind
