package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"malstats/internal/profile"
	"malstats/internal/report"
	"malstats/pkg/logger"
)

func statsCommand() *cobra.Command {
	var (
		refresh bool
		asJSON  bool
		charts  bool
	)
	cmd := &cobra.Command{
		Use:   "stats [user]",
		Short: "Print list statistics, validate tags and write chart data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := userArg(args)
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var u *profile.User
			if refresh {
				_, u, err = a.Service.Import(ctx, name)
			} else {
				u, err = a.Service.User(ctx, name)
			}
			if err != nil {
				return err
			}

			sum, err := a.Service.Summarize(u)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(sum); err != nil {
					return err
				}
			} else {
				report.Render(os.Stdout, *sum)
			}

			if charts && a.Config.Charts.Enabled {
				paths, err := a.ChartWriter().Write(u)
				if err != nil {
					return err
				}
				a.Log.Info("[charts] chart data written", logger.Int("files", len(paths)), logger.String("dir", a.Config.Charts.OutputDir))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "import from the live source before printing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&charts, "charts", true, "write chart data files")
	return cmd
}
