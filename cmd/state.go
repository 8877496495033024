package cmd

import (
	"sort"
	"strings"
	"time"

	"reservation-monitor/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newStateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the slots remembered from previous runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := utils.NewLogger(cfg.Debug)

			store, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			state, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(state.Found))
			for k := range state.Found {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Restaurant", "Platform", "Date", "Slots"})
			for _, k := range keys {
				parts := strings.SplitN(k, "|", 3)
				for len(parts) < 3 {
					parts = append(parts, "")
				}
				t.AppendRow(table.Row{parts[0], parts[1], parts[2], strings.Join(state.Found[k], ", ")})
			}
			lastRun := "never"
			if !state.LastRun.IsZero() {
				lastRun = state.LastRun.Format(time.RFC3339)
			}
			t.AppendFooter(table.Row{"last run", lastRun, "", len(keys)})
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}
