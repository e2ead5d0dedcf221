package cmd

import "time"

// DEF_TIMEOUT bounds one control request made by the status and stop
// commands.
const DEF_TIMEOUT = time.Second * 10

const DESCRIPTION = `
warpjs runs a JavaScript file on an embedded engine and gives it
timers, synchronous file reads and a minimal HTTP server. Callbacks
run one at a time on a single script thread, in the order their work
became ready.
`

const (
	RunDescription = `The run command evaluates a script and keeps serving its
timers and HTTP servers until no work is left, the process is
interrupted, or "warpjs stop" is called.

Example:
        warpjs run server.js
                    OR
        warpjs server.js --addr :3000

`
	StatusDescription = `The status command asks a running host, started with
--control-addr, for its scheduler state, request queue and
pending timers.

Example:
        warpjs status --control-secret <secret>
        warpjs status --watch

`
	StopDescription = `The stop command asks a running host to shut down after its
current callback.

Example:
        warpjs stop --control-secret <secret>

`
)
