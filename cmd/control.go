package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/warpjs/cmd/common"
	"github.com/warpdl/warpjs/internal/control"
	"github.com/warpdl/warpjs/internal/host"
)

var errNoSecret = errors.New("no control secret provided")

func newControlClient() (*control.Client, error) {
	if controlSecret == "" {
		return nil, errNoSecret
	}
	return control.NewClient(controlAddr, controlSecret, nil), nil
}

func status(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newControlClient()
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	defer client.Close()
	if watchStatus {
		sigCtx, cancel := setupShutdownHandler()
		defer cancel()
		if err := watch(sigCtx, ctx.App.Writer, client, watchInterval); err != nil {
			common.PrintRuntimeErr(ctx, "status", "watch", err)
		}
		return nil
	}

	rctx, cancel := context.WithTimeout(context.Background(), DEF_TIMEOUT)
	defer cancel()
	st, err := client.Status(rctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "get_status", err)
		return nil
	}
	timers, err := client.Timers(rctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "list_timers", err)
		return nil
	}
	printStatus(ctx.App.Writer, st, timers)
	return nil
}

func printStatus(w io.Writer, st *host.Status, timers []host.TimerInfo) {
	listeners := "none"
	if len(st.Listeners) > 0 {
		listeners = strings.Join(st.Listeners, ", ")
	}
	txt := fmt.Sprintf("State:     %s", st.State)
	txt += fmt.Sprintf("\nListeners: %s", listeners)
	txt += fmt.Sprintf("\nRequests:  %d / %d queued", st.QueuedRequests, st.QueueCapacity)
	txt += fmt.Sprintf("\nTurns:     %d (%d uncaught errors)", st.Turns, st.UncaughtErrors)
	if len(timers) == 0 {
		txt += "\nTimers:    none"
		fmt.Fprintln(w, txt)
		return
	}
	txt += fmt.Sprintf("\nTimers:    %d pending", len(timers))
	txt += "\n\n------------------------------------------------"
	txt += "\n|  ID  |           Fires At          | Repeat  |"
	txt += "\n|------|-----------------------------|---------|"
	for _, t := range timers {
		repeat := "-"
		if t.Repeating {
			repeat = fmt.Sprintf("%dms", t.Interval)
		}
		txt += fmt.Sprintf("\n|%s|%s|%s|",
			common.Beaut(fmt.Sprint(t.ID), 6),
			common.Beaut(t.FireAt.Format(time.RFC3339Nano), 29),
			common.Beaut(repeat, 9),
		)
	}
	txt += "\n------------------------------------------------"
	fmt.Fprintln(w, txt)
}

// watch polls the host and draws its request queue until the host shuts
// down, becomes unreachable, or ctx is done.
func watch(ctx context.Context, w io.Writer, client *control.Client, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	poll := func() (*host.Status, error) {
		rctx, cancel := context.WithTimeout(ctx, DEF_TIMEOUT)
		defer cancel()
		return client.Status(rctx)
	}
	st, err := poll()
	if err != nil {
		return err
	}

	var note atomic.Value
	setNote := func(st *host.Status) {
		note.Store(fmt.Sprintf("%s, %d timers", st.State, st.PendingTimers))
	}
	setNote(st)

	p := mpb.NewWithContext(ctx, mpb.WithOutput(w), mpb.WithWidth(48))
	bar := common.InitStatusBar(p, "Requests", int64(st.QueueCapacity), func() string {
		return note.Load().(string)
	})
	bar.SetCurrent(int64(st.QueuedRequests))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for st.State != host.StateShutdown.String() {
		select {
		case <-ctx.Done():
			bar.Abort(false)
			p.Wait()
			return nil
		case <-ticker.C:
		}
		st, err = poll()
		if err != nil {
			bar.Abort(false)
			p.Wait()
			return err
		}
		setNote(st)
		bar.SetCurrent(int64(st.QueuedRequests))
	}
	bar.Abort(false)
	p.Wait()
	return nil
}

func stop(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newControlClient()
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	defer client.Close()
	rctx, cancel := context.WithTimeout(context.Background(), DEF_TIMEOUT)
	defer cancel()
	res, err := client.Stop(rctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "stop", "stop_host", err)
		return nil
	}
	fmt.Fprintf(ctx.App.Writer, "Host stopping (was %s).\n", res.State)
	return nil
}
