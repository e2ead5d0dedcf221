package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/warpdl/warpjs/cmd/common"
	"github.com/warpdl/warpjs/internal/control"
	"github.com/warpdl/warpjs/internal/host"
	"github.com/warpdl/warpjs/pkg/logger"
)

var errNoScript = errors.New("no script provided")

// scriptFs is where run reads the script from.
var scriptFs afero.Fs = afero.NewOsFs()

func run(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		if ctx.Command.Name == "" {
			return common.Help(ctx)
		}
		return common.PrintErrWithCmdHelp(ctx, errNoScript)
	} else if path == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	src, err := afero.ReadFile(scriptFs, path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	l := newLogger(os.Stderr, debug)
	defer l.Close()

	h, err := host.New(&host.Config{
		QueueSize:       queueSize,
		MaxHeaderBytes:  maxHeaderBytes,
		MaxBodyBytes:    maxBodyBytes,
		ResponseTimeout: responseTimeout,
		DefaultAddr:     listenAddr,
		AutoListen:      !noAutoListen,
		Root:            fsRoot,
		ReadOnly:        readOnly,
		Argv:            append([]string{ctx.App.HelpName, path}, ctx.Args().Tail()...),
		Debug:           debug,
	}, &host.Dependencies{Logger: l})
	if err != nil {
		return err
	}

	if controlAddr != "" {
		cs, err := startControl(ctx.App.ErrWriter, h, l)
		if err != nil {
			h.Close()
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), DEF_TIMEOUT)
			defer cancel()
			_ = cs.Shutdown(sctx)
		}()
	}

	sigCtx, cancel := setupShutdownHandler()
	defer cancel()
	if err := h.RunScript(sigCtx, path, string(src)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// startControl serves the control endpoint for h. A missing secret is
// generated and printed so an operator can use it.
func startControl(w io.Writer, h *host.Host, l logger.Logger) (*control.Server, error) {
	secret := controlSecret
	if secret == "" {
		secret = uuid.NewString()
		if w == nil {
			w = os.Stderr
		}
		fmt.Fprintf(w, "warpjs: control secret: %s\n", secret)
	}
	cs := control.NewServer(control.Config{
		Addr:      controlAddr,
		Secret:    secret,
		Version:   buildInfo.Version,
		Commit:    buildInfo.Commit,
		BuildType: buildInfo.BuildType,
	}, h, l)
	if err := cs.Start(); err != nil {
		return nil, err
	}
	return cs, nil
}

// infoFilter drops Info messages unless debug logging is on.
type infoFilter struct {
	logger.Logger
}

func (infoFilter) Info(string, ...interface{}) {}

func newLogger(w io.Writer, debug bool) logger.Logger {
	l := logger.NewStandardLogger(log.New(w, "warpjs: ", log.LstdFlags))
	if debug {
		return l
	}
	return infoFilter{l}
}
