package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/store"
)

// printHistory lists adjustments newest first.
func printHistory(cmd *cobra.Command, _ []string) error {
	if historyChannel != "" {
		if _, err := control.ParseChannel(historyChannel); err != nil {
			return err
		}
	}
	if historyLimit < 1 {
		return fmt.Errorf("--limit must be positive, got %d", historyLimit)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	adjustments, err := st.Adjustments().List(historyChannel, historyLimit)
	if err != nil {
		return fmt.Errorf("list adjustments: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(adjustments) == 0 {
		fmt.Fprintln(out, "no adjustments recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCHANNEL\tPERCENT\tRESULT")
	for _, a := range adjustments {
		result := "ok"
		if !a.Success {
			result = "error: " + a.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\n", a.AppliedAt.Local().Format(time.DateTime), a.Channel, a.Percent, result)
	}
	return w.Flush()
}
