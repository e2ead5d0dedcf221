package cmd

import (
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warpjs/common"
	"github.com/warpdl/warpjs/internal/host"
	"github.com/warpdl/warpjs/internal/httpbind"
)

var (
	listenAddr      string
	queueSize       int
	maxHeaderBytes  int
	maxBodyBytes    int64
	responseTimeout time.Duration
	noAutoListen    bool
	fsRoot          string
	readOnly        bool
	debug           bool

	controlAddr   string
	controlSecret string

	watchStatus   bool
	watchInterval time.Duration

	controlFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "control-addr",
			Usage:       "address of the control endpoint",
			EnvVar:      common.ControlAddrEnv,
			Value:       common.DefaultControlAddr,
			Destination: &controlAddr,
		},
		cli.StringFlag{
			Name:        "control-secret",
			Usage:       "bearer token of the control endpoint",
			EnvVar:      common.ControlSecretEnv,
			Destination: &controlSecret,
		},
	}

	runFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "addr, a",
			Usage:       "default address of listen() and of servers never listened on",
			EnvVar:      common.AddrEnv,
			Value:       host.DefaultAddr,
			Destination: &listenAddr,
		},
		cli.IntFlag{
			Name:        "queue-size, q",
			Usage:       "maximum number of requests waiting for a handler",
			EnvVar:      common.QueueSizeEnv,
			Value:       httpbind.DefaultQueueSize,
			Destination: &queueSize,
		},
		cli.IntFlag{
			Name:        "max-header-bytes",
			Usage:       "maximum size of a request header block",
			Value:       httpbind.DefaultMaxHeaderBytes,
			Destination: &maxHeaderBytes,
		},
		cli.Int64Flag{
			Name:        "max-body-bytes",
			Usage:       "maximum size of a request body",
			Value:       httpbind.DefaultMaxBodyBytes,
			Destination: &maxBodyBytes,
		},
		cli.DurationFlag{
			Name:        "response-timeout",
			Usage:       "answer 504 when a handler has not ended its response in time (0 waits forever)",
			Destination: &responseTimeout,
		},
		cli.BoolFlag{
			Name:        "no-auto-listen",
			Usage:       "do not bind servers the script created without calling listen()",
			Destination: &noAutoListen,
		},
		cli.StringFlag{
			Name:        "root, r",
			Usage:       "confine the fs module to this directory",
			EnvVar:      common.RootEnv,
			Destination: &fsRoot,
		},
		cli.BoolFlag{
			Name:        "read-only",
			Usage:       "reject fs writes",
			Destination: &readOnly,
		},
		cli.BoolFlag{
			Name:        "debug, d",
			Usage:       "log host diagnostics and mirror console output to the log",
			EnvVar:      common.DebugEnv,
			Destination: &debug,
		},
		cli.StringFlag{
			Name:        "control-addr",
			Usage:       "serve the control endpoint on this address (disabled when empty)",
			EnvVar:      common.ControlAddrEnv,
			Destination: &controlAddr,
		},
		cli.StringFlag{
			Name:        "control-secret",
			Usage:       "bearer token of the control endpoint (generated when empty)",
			EnvVar:      common.ControlSecretEnv,
			Destination: &controlSecret,
		},
	}

	statusFlags = append([]cli.Flag{
		cli.BoolFlag{
			Name:        "watch, w",
			Usage:       "keep polling and draw the request queue as a bar",
			Destination: &watchStatus,
		},
		cli.DurationFlag{
			Name:        "interval, i",
			Usage:       "polling interval of --watch",
			Value:       time.Second,
			Destination: &watchInterval,
		},
	}, controlFlags...)
)
