package host

import (
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/warpjs/internal/clock"
	"github.com/warpdl/warpjs/pkg/logger"
)

const (
	// DefaultAddr is used by listen() without an address.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds connection draining on shutdown.
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds the tunables of a Host.
type Config struct {
	// QueueSize bounds the pending-request queue shared by all servers.
	QueueSize int

	// MaxHeaderBytes bounds a request's header block.
	MaxHeaderBytes int

	// MaxBodyBytes bounds a request body.
	MaxBodyBytes int64

	// ResponseTimeout answers requests whose handler did not end the
	// response in time with 504. Zero disables the timeout.
	ResponseTimeout time.Duration

	// DefaultAddr is the address used by listen() without arguments.
	DefaultAddr string

	// AutoListen binds servers that the top-level script created but
	// never listened on to DefaultAddr.
	AutoListen bool

	// Root confines fs paths to a directory.
	Root string

	// ReadOnly rejects fs writes.
	ReadOnly bool

	// Argv is exposed as process.argv.
	Argv []string

	// ShutdownTimeout bounds connection draining on shutdown.
	ShutdownTimeout time.Duration

	// Debug mirrors console output into the host logger.
	Debug bool
}

// Dependencies holds the collaborators of a Host, replaceable in tests.
type Dependencies struct {
	// Clock drives timers. Defaults to the wall clock.
	Clock clock.Clock

	// Fs backs the fs module. Defaults to the OS filesystem shaped by
	// Config.Root and Config.ReadOnly.
	Fs afero.Fs

	// Logger receives host diagnostics. Defaults to a NopLogger.
	Logger logger.Logger

	// Stdout and Stderr receive console output.
	Stdout io.Writer
	Stderr io.Writer
}

func applyConfigDefaults(config *Config) *Config {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.DefaultAddr == "" {
		cfg.DefaultAddr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &cfg
}

func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	d := Dependencies{}
	if deps != nil {
		d = *deps
	}
	if d.Clock == nil {
		d.Clock = clock.NewReal()
	}
	if d.Logger == nil {
		d.Logger = logger.NewNopLogger()
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	return &d
}
