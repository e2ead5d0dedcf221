// Package common holds names shared by the warpjs command and its tests.
package common

// Environment variable names for configuration.
const (
	// AddrEnv is the default address of listen() without arguments.
	AddrEnv = "WARPJS_ADDR"

	// QueueSizeEnv bounds the pending HTTP request queue.
	QueueSizeEnv = "WARPJS_QUEUE_SIZE"

	// RootEnv confines the fs module to a directory.
	RootEnv = "WARPJS_ROOT"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "WARPJS_DEBUG"

	// ControlAddrEnv is the listen address of the control endpoint.
	ControlAddrEnv = "WARPJS_CONTROL_ADDR"

	// ControlSecretEnv is the bearer token of the control endpoint.
	ControlSecretEnv = "WARPJS_CONTROL_SECRET"
)

// DefaultControlAddr is where the status and stop commands look for a
// running host when no address is given.
const DefaultControlAddr = "127.0.0.1:9181"
