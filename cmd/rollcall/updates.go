package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) updatesCmd() *cobra.Command {
	var lastID int64
	cmd := &cobra.Command{
		Use:   "updates",
		Short: "Poll once for today's scans newer than --last-id",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.client().Updates(cmd.Context(), lastID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.HasUpdates {
				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "ID\tTAG\tNAME\tTYPE\tDEVICE\tTIME")
				for _, e := range res.NewRecords {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						e.ID, e.TagID, e.UserName, e.AttendanceType, e.DeviceID, e.ScanTime)
				}
				_ = w.Flush()
			}
			fmt.Fprintf(out, "last_id: %d\n", res.LastID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&lastID, "last-id", 0, "cursor returned by the previous poll")
	return cmd
}
