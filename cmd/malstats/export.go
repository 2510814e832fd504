package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"malstats/internal/report"
	"malstats/pkg/models"
)

func exportCommand() *cobra.Command {
	var (
		kind string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export [user]",
		Short: "Write the latest stored list of one kind to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := userArg(args)
			if err != nil {
				return err
			}
			k, err := models.ParseKind(kind)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join("data", fmt.Sprintf("%s_%s.csv", name, k))
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Service.User(cmd.Context(), name)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := report.WriteUserCSV(f, u, k); err != nil {
				return err
			}
			fmt.Printf("exported %s %s list to %s\n", name, k, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "anime", "anime or manga")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output CSV path (default data/<user>_<kind>.csv)")
	return cmd
}
