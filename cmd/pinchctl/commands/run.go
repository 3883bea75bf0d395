package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/ayusman/pinchctl/internal/app"
	"github.com/ayusman/pinchctl/internal/server"
	"github.com/ayusman/pinchctl/internal/tray"
	"github.com/ayusman/pinchctl/pkg/logger"
)

// runLoop runs the control loop with the HTTP surface and, when enabled,
// the tray. The tray owns the main goroutine while it is shown.
func runLoop(cmd *cobra.Command, _ []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := log()
	a, err := app.Build(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	var srvErr chan error
	if cfg.HTTPAddr != "" {
		srv := server.New(server.Config{
			Controller: a,
			Frames:     a.Frames(),
			Store:      a.Store(),
			Capturer:   a.Capturer(),
			Log:        l,
		})
		srvErr = make(chan error, 1)
		go func() {
			err := srv.Serve(ctx, cfg.HTTPAddr)
			if err != nil {
				l.Error(ctx, "http server failed", logger.Error(err))
			}
			srvErr <- err
		}()
	}

	var result *multierror.Error
	if cfg.Tray {
		t := tray.New(a, cancel, l)
		loopErr := make(chan error, 1)
		go func() {
			err := a.Run(ctx)
			t.Quit()
			loopErr <- err
		}()
		t.Run()
		cancel()
		result = multierror.Append(result, <-loopErr)
	} else {
		result = multierror.Append(result, a.Run(ctx))
	}

	cancel()
	if srvErr != nil {
		result = multierror.Append(result, <-srvErr)
	}
	return result.ErrorOrNil()
}
