package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"malstats/pkg/models"
)

func importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [user]",
		Short: "Fetch a user's lists from the live source and store a snapshot",
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

			snap, _, err := a.Service.Import(cmd.Context(), name)
			if err != nil {
				return err
			}
			renderSnapshots([]models.Snapshot{*snap})
			return nil
		},
	}
}

func snapshotsCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "snapshots [user]",
		Short: "List stored snapshots, newest first",
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

			snaps, total, err := a.Service.Snapshots(cmd.Context(), name, limit, offset)
			if err != nil {
				return err
			}
			renderSnapshots(snaps)
			fmt.Printf("%d of %d snapshots\n", len(snaps), total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	return cmd
}

func deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <snapshot-id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service.DeleteSnapshot(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
}

func renderSnapshots(snaps []models.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "User", "Source", "Anime", "Manga", "Created"})
	for _, s := range snaps {
		t.AppendRow(table.Row{s.ID, s.UserName, s.Source, s.AnimeCount, s.MangaCount, s.CreatedAt.Local().Format(time.DateTime)})
	}
	t.Render()
}
