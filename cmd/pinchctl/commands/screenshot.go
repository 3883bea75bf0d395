package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/pinchctl/internal/app"
	"github.com/ayusman/pinchctl/internal/store"
	"github.com/ayusman/pinchctl/pkg/logger"
)

// takeScreenshot captures the screen once and records it in history when
// the database is available.
func takeScreenshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	l := log()

	capturer, err := app.NewCapturer(cfg, l)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		l.Warn(ctx, "history disabled", logger.Error(err))
		st = nil
	} else {
		defer st.Close()
	}

	path, err := app.SaveScreenshot(ctx, app.ScreenshotJob{
		Capturer: capturer,
		Store:    st,
		Keep:     cfg.ScreenshotKeep,
		Trigger:  store.TriggerCLI,
		At:       time.Now(),
	}, l)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
