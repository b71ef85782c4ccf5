package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kelsos/teknify/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previously uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := storage.GetHistoryFilePath()
			if err != nil {
				return err
			}

			entries, err := storage.NewHistory(path).Last(limit)
			if err != nil {
				return err
			}

			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n",
					entry.UploadedAt.Local().Format(time.RFC3339), entry.Path, entry.URL)
			}
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of most recent entries to show (0 for all)")

	return historyCmd
}
